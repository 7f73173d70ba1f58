package requirements

// схема структурированного ответа ИИ на запрос списка требований
const requirementsSchema = `{
	"type": "object",
	"required": ["requirements"],
	"properties": {
		"requirements": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["label"],
				"properties": {
					"id": {"type": "string"},
					"label": {"type": "string", "minLength": 1},
					"must": {"type": "boolean"},
					"weight": {"type": "number"},
					"keywords": {"type": "array", "items": {"type": "string"}},
					"rubric": {"type": "string"},
					"question_templates": {"type": "array", "items": {"type": "string"}}
				}
			}
		}
	}
}`
