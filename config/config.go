package config

import (
	"github.com/gotify/configor"
)

var Conf *Configuration

type Configuration struct {
	App struct {
		ListenAddr string `default:"" env:"APP_HOST"`
		Port       int    `default:"8080"  env:"APP_PORT"`
	}
	Database struct {
		Host           string `default:"127.0.0.1" env:"DB_HOST"`
		Port           string `default:"5432" env:"DB_PORT"`
		Name           string `default:"hr-interview" env:"DB_NAME"`
		User           string `default:"postgres" env:"DB_USER"`
		Password       string `default:"postgres" env:"DB_PASSWORD"`
		MigrateOnStart *bool  `default:"true" env:"DB_MIGRATE_ON_START"`
		DebugMode      *bool  `default:"false" env:"DB_DEBUG_MODE"`
	}
	Auth struct {
		JWTSecret              string `default:"" env:"AUTH_JWT_SECRET"`
		InterviewTokenSecret   string `default:"" env:"AUTH_INTERVIEW_TOKEN_SECRET"`
		InterviewTokenTTLHours int    `default:"72" env:"AUTH_INTERVIEW_TOKEN_TTL_HOURS"`
	}
	AI struct {
		// порядок обхода провайдеров по умолчанию, через запятую
		ProviderOrder string `default:"yandexgpt,gemini,openai" env:"AI_PROVIDER_ORDER"`
		YandexGPT     struct {
			IAMToken  string `default:"" env:"AI_YAGPT_IAM_TOKEN"`
			CatalogID string `default:"" env:"AI_YAGPT_CATALOG_ID"`
		}
		Gemini struct {
			APIKey string `default:"" env:"AI_GEMINI_API_KEY"`
			Model  string `default:"gemini-2.5-flash" env:"AI_GEMINI_MODEL"`
		}
		OpenAI struct {
			APIKey  string `default:"" env:"AI_OPENAI_API_KEY"`
			BaseURL string `default:"" env:"AI_OPENAI_BASE_URL"`
			Model   string `default:"gpt-4o-mini" env:"AI_OPENAI_MODEL"`
		}
		Retry struct {
			MaxAttempts   int `default:"3" env:"AI_RETRY_MAX_ATTEMPTS"`
			MaxBackoffSec int `default:"60" env:"AI_RETRY_MAX_BACKOFF_SEC"`
		}
		Breaker struct {
			FailureThreshold int `default:"5" env:"AI_BREAKER_FAILURE_THRESHOLD"`
			CoolDownSec      int `default:"300" env:"AI_BREAKER_COOL_DOWN_SEC"`
		}
		Cache struct {
			MaxSizeKB     int `default:"256" env:"AI_CACHE_MAX_SIZE_KB"`
			DefaultTTLSec int `default:"600" env:"AI_CACHE_DEFAULT_TTL_SEC"`
		}
		Timeout struct {
			OpeningSec    int `default:"8" env:"AI_TIMEOUT_OPENING_SEC"`
			GenerationSec int `default:"12" env:"AI_TIMEOUT_GENERATION_SEC"`
			PolishSec     int `default:"1" env:"AI_TIMEOUT_POLISH_SEC"`
			AnalysisSec   int `default:"30" env:"AI_TIMEOUT_ANALYSIS_SEC"`
		}
	}
	Interview struct {
		// пороги досрочного завершения интервью, единый источник значений
		StopMinPositive   int `default:"5" env:"INTERVIEW_STOP_MIN_POSITIVE"`
		StopMinNegative   int `default:"3" env:"INTERVIEW_STOP_MIN_NEGATIVE"`
		StopMinMixed      int `default:"7" env:"INTERVIEW_STOP_MIN_MIXED"`
		LowScoreThreshold int `default:"40" env:"INTERVIEW_LOW_SCORE_THRESHOLD"`
		SalaryMinAsked    int `default:"5" env:"INTERVIEW_SALARY_MIN_ASKED"`
		ProbeMinAsked     int `default:"3" env:"INTERVIEW_PROBE_MIN_ASKED"`
		// ключевые слова зарплатного вопроса, через запятую (ru/en/tr рынки)
		SalaryKeywords string `default:"зарплат,оклад,ожидания по доходу,salary,compensation,maaş,ücret,beklenti" env:"INTERVIEW_SALARY_KEYWORDS"`
	}
	Worker struct {
		AnalyzeEnabled     *bool `default:"true" env:"WORKER_ANALYZE_ENABLED"`
		AnalyzePeriodSec   int   `default:"60" env:"WORKER_ANALYZE_PERIOD_SEC"`
		AnalyzeFirstRunSec int   `default:"5" env:"WORKER_ANALYZE_FIRST_RUN_SEC"`
	}
}

func configFiles() []string {
	return []string{"config.yml"}
}

func InitConfig() {
	if Conf != nil {
		return
	}
	conf := new(Configuration)
	err := configor.New(&configor.Config{}).Load(conf, configFiles()...)
	if err != nil {
		panic(err)
	}
	Conf = conf
}
