package analysis

// схемы структурированных ответов ИИ на три прохода анализа

const criteriaSchema = `{
	"type": "object",
	"required": ["criteria"],
	"properties": {
		"criteria": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["name", "score"],
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"score": {"type": "number"},
					"confidence": {"type": "string"},
					"importance": {"type": "string"},
					"evidence": {"type": "array", "items": {"type": "string"}}
				}
			}
		}
	}
}`

const jobFitSchema = `{
	"type": "object",
	"required": ["requirements"],
	"properties": {
		"requirements": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["label", "meets"],
				"properties": {
					"label": {"type": "string", "minLength": 1},
					"meets": {"type": "string", "enum": ["yes", "partial", "no"]},
					"source": {"type": "string"},
					"evidence": {"type": "array", "items": {"type": "string"}},
					"confidence": {"type": "number"}
				}
			}
		}
	}
}`

const decisionSchema = `{
	"type": "object",
	"required": ["recommendation"],
	"properties": {
		"recommendation": {"type": "string", "minLength": 1},
		"red_flags": {"type": "array", "items": {"type": "string"}},
		"summary": {"type": "string"}
	}
}`
