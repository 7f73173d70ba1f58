package aiclient

import (
	"context"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"hr-interview-backend/config"
	"hr-interview-backend/db"
	ailogstore "hr-interview-backend/lib/ai-client/ai-log-store"
	circuitbreaker "hr-interview-backend/lib/ai-client/circuit-breaker"
	geminiclient "hr-interview-backend/lib/ai-client/gemini-client"
	localclient "hr-interview-backend/lib/ai-client/local-client"
	openaiclient "hr-interview-backend/lib/ai-client/openai-client"
	responsecache "hr-interview-backend/lib/ai-client/response-cache"
	yagptclient "hr-interview-backend/lib/ai-client/yagpt-client"
	aiclientmodels "hr-interview-backend/models/api/aiclient"
	dbmodels "hr-interview-backend/models/db"
)

// Provider - устойчивый клиент генерации: кеш, circuit breaker на провайдера,
// ретраи и упорядоченная цепочка альтернатив. Generate всегда возвращает ответ:
// последним в цепочке стоит локальный детерминированный генератор
type Provider interface {
	Generate(ctx context.Context, req aiclientmodels.GenerationRequest) (aiclientmodels.GenerationResponse, error)
}

var Instance Provider

func NewHandler(ctx context.Context) {
	cfg := config.Conf.AI
	available := map[string]ProviderClient{}
	if cfg.YandexGPT.IAMToken != "" && cfg.YandexGPT.CatalogID != "" {
		available[ProviderYandexGPT] = yagptclient.NewClient(cfg.YandexGPT.IAMToken, cfg.YandexGPT.CatalogID)
	}
	if cfg.Gemini.APIKey != "" {
		client, err := geminiclient.NewClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			log.WithError(err).Error("ошибка инициализации клиента Gemini, провайдер отключен")
		} else {
			available[ProviderGemini] = client
		}
	}
	if cfg.OpenAI.APIKey != "" {
		available[ProviderOpenAI] = openaiclient.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model)
	}

	// порядок обхода из конфига, неизвестные и не настроенные имена пропускаем
	clients := []ProviderClient{}
	for _, name := range strings.Split(cfg.ProviderOrder, ",") {
		if client, ok := available[strings.TrimSpace(name)]; ok {
			clients = append(clients, client)
		}
	}
	log.Infof("Инициализация клиента генерации, провайдеров: %v", len(clients))

	Instance = &impl{
		clients:        clients,
		fallback:       localclient.NewClient(),
		logStore:       ailogstore.NewInstance(db.DB),
		breaker:        circuitbreaker.New(cfg.Breaker.FailureThreshold, time.Duration(cfg.Breaker.CoolDownSec)*time.Second),
		cache:          responsecache.New(cfg.Cache.MaxSizeKB*1024, time.Duration(cfg.Cache.DefaultTTLSec)*time.Second),
		maxAttempts:    cfg.Retry.MaxAttempts,
		maxBackoff:     time.Duration(cfg.Retry.MaxBackoffSec) * time.Second,
		attemptTimeout: time.Duration(cfg.Timeout.AnalysisSec) * time.Second,
	}
}

type impl struct {
	clients        []ProviderClient
	fallback       ProviderClient
	logStore       ailogstore.Provider
	breaker        *circuitbreaker.Breaker
	cache          *responsecache.Cache
	maxAttempts    int
	maxBackoff     time.Duration
	attemptTimeout time.Duration // верхняя граница одной попытки, когда дедлайн вызова длиннее
}

func (i *impl) getLogger(provider string) *log.Entry {
	return log.WithField("ai", provider)
}

func (i *impl) Generate(ctx context.Context, req aiclientmodels.GenerationRequest) (aiclientmodels.GenerationResponse, error) {
	key := responsecache.Key(req)
	if cached, ok := i.cache.Get(key); ok {
		cached.Cached = true
		return cached, nil
	}

	for _, client := range i.providerOrder(req.Preferred) {
		name := client.Name()
		if !i.breaker.Allow(name) {
			i.getLogger(name).Info("провайдер пропущен, circuit breaker открыт")
			continue
		}
		now := time.Now()
		text, err := i.callWithRetry(ctx, client, req)
		if err != nil {
			i.breaker.OnFailure(name)
			i.getLogger(name).
				WithField("kind", req.Kind).
				WithError(err).
				Warn("провайдер недоступен, переход к следующему в цепочке")
			continue
		}
		i.breaker.OnSuccess(name)
		resp := aiclientmodels.GenerationResponse{
			Text:     text,
			Provider: name,
			Latency:  time.Since(now),
		}
		i.cache.Put(key, resp, req.CacheTTL)
		i.saveLog(req, resp)
		return resp, nil
	}

	// все внешние провайдеры исчерпаны или отключены breaker-ом,
	// отвечает локальный ярус - он не умеет отказывать
	now := time.Now()
	text, _ := i.fallback.Generate(ctx, req)
	resp := aiclientmodels.GenerationResponse{
		Text:     text,
		Provider: i.fallback.Name(),
		Latency:  time.Since(now),
	}
	i.saveLog(req, resp)
	return resp, nil
}

// providerOrder - приоритетный провайдер вызова, затем базовый порядок
func (i *impl) providerOrder(preferred string) []ProviderClient {
	if preferred == "" {
		return i.clients
	}
	order := make([]ProviderClient, 0, len(i.clients))
	for _, client := range i.clients {
		if client.Name() == preferred {
			order = append(order, client)
		}
	}
	for _, client := range i.clients {
		if client.Name() != preferred {
			order = append(order, client)
		}
	}
	return order
}

// callWithRetry выполняет до maxAttempts попыток с экспоненциальной паузой,
// ретраится только временный класс ошибок
func (i *impl) callWithRetry(ctx context.Context, client ProviderClient, req aiclientmodels.GenerationRequest) (string, error) {
	var text string
	op := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, i.attemptTimeout)
		defer cancel()
		out, err := client.Generate(attemptCtx, req)
		if err != nil {
			if Classify(err) == ErrKindTransient {
				return err
			}
			return backoff.Permanent(err)
		}
		if strings.TrimSpace(out) == "" {
			return backoff.Permanent(errors.New("пустой ответ провайдера"))
		}
		text = out
		return nil
	}
	bo := backoff.NewExponentialBackOff()
	bo.MaxInterval = i.maxBackoff
	bo.MaxElapsedTime = 0
	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(i.maxAttempts-1)), ctx))
	if err != nil {
		return "", err
	}
	return text, nil
}

func (i *impl) saveLog(req aiclientmodels.GenerationRequest, resp aiclientmodels.GenerationResponse) {
	if i.logStore == nil {
		return
	}
	_, err := i.logStore.Save(dbmodels.AiLog{
		SysPromt:    req.SystemPrompt,
		UserPromt:   req.Prompt,
		Answer:      resp.Text,
		InterviewID: req.RefID,
		ReqestType:  dbmodels.AiReqestType(req.Kind),
		AiName:      resp.Provider,
		Cached:      resp.Cached,
		LatencyMs:   resp.Latency.Milliseconds(),
	})
	if err != nil {
		log.WithError(err).Error("ошибка сохранения журнала запроса к ИИ")
	}
}
