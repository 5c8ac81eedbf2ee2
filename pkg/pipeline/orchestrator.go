package pipeline

import (
	"context"
	"time"

	"ai-docshelper-be/internal/constant"
	"ai-docshelper-be/internal/pkg/logger"
	"ai-docshelper-be/pkg/pipeline/conversation"
	"ai-docshelper-be/pkg/pipeline/mutation"
	"ai-docshelper-be/pkg/pipeline/retrieval"
	"ai-docshelper-be/pkg/pipeline/stage"

	"github.com/google/uuid"
)

// Result is the full outcome of one request through the pipeline.
// FinalUserResponse is always populated, fallback turns included.
type Result struct {
	Intent            string
	Action            *string
	ChangedIds        []int64
	RetrievedRows     []retrieval.Record
	NewContent        *string
	CallToDb          bool
	FinalUserResponse string
}

// Orchestrator drives one query through repeat detection, classification,
// retrieval, synthesis, mutation and response. Model stages run under a
// bounded timeout; a classifier or synthesizer failure of any kind degrades
// to a fixed apology appended as a normal assistant turn, while storage,
// embedding and responder failures surface as errors.
type Orchestrator struct {
	conv            *conversation.Manager
	detector        *conversation.Detector
	classifier      *stage.Classifier
	synthesizer     *stage.Synthesizer
	responder       *stage.Responder
	retriever       *retrieval.Client
	mutator         *mutation.Client
	repeatThreshold float64
	stageTimeout    time.Duration
	logger          logger.ILogger
}

type OrchestratorConfig struct {
	Conversation    *conversation.Manager
	Detector        *conversation.Detector
	Classifier      *stage.Classifier
	Synthesizer     *stage.Synthesizer
	Responder       *stage.Responder
	Retriever       *retrieval.Client
	Mutator         *mutation.Client
	RepeatThreshold float64
	StageTimeout    time.Duration
	Logger          logger.ILogger
}

func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	return &Orchestrator{
		conv:            cfg.Conversation,
		detector:        cfg.Detector,
		classifier:      cfg.Classifier,
		synthesizer:     cfg.Synthesizer,
		responder:       cfg.Responder,
		retriever:       cfg.Retriever,
		mutator:         cfg.Mutator,
		repeatThreshold: cfg.RepeatThreshold,
		stageTimeout:    cfg.StageTimeout,
		logger:          cfg.Logger,
	}
}

// Run processes one query for the session. The caller must hold the
// session's lock; Run itself does no session-level synchronization.
func (o *Orchestrator) Run(ctx context.Context, sessionId uuid.UUID, query string) (*Result, error) {
	isRepeat, err := o.detector.IsRepeat(ctx, sessionId, query, o.repeatThreshold)
	if err != nil {
		return nil, &DependencyError{Dependency: "embedding", Err: err}
	}
	if isRepeat {
		return o.shortCircuit(ctx, sessionId, query)
	}

	if err := o.conv.AppendUserMessage(ctx, sessionId, query); err != nil {
		return nil, &DependencyError{Dependency: "conversation store", Err: err}
	}

	decision, err := o.classify(ctx, query)
	if err != nil {
		o.logger.Warn("pipeline", "Classifier failed, falling back", map[string]interface{}{
			"session_id": sessionId.String(), "error": err.Error(),
		})
		return o.fallback(ctx, sessionId, constant.ClassifierFallbackMessage, &Result{
			Intent: constant.FallbackIntent,
		})
	}

	result := &Result{
		Intent:        decision.Intent,
		Action:        decision.Action,
		ChangedIds:    []int64{},
		RetrievedRows: []retrieval.Record{},
	}

	if decision.RequiresRetrieval() {
		rows, err := o.retriever.Retrieve(ctx, decision.RetrievalQuery(query))
		if err != nil {
			return nil, &DependencyError{Dependency: "content store", Err: err}
		}
		result.RetrievedRows = rows
	}

	mutationDecision, err := o.synthesize(ctx, decision, result.RetrievedRows)
	if err != nil {
		o.logger.Warn("pipeline", "Synthesizer failed, falling back", map[string]interface{}{
			"session_id": sessionId.String(), "error": err.Error(),
		})
		return o.fallback(ctx, sessionId, constant.SynthesizerFallbackMessage, result)
	}
	result.NewContent = mutationDecision.NewContent
	result.CallToDb = mutationDecision.CallToDb

	if mutationDecision.CallToDb {
		action := decision.NormalizedAction()
		switch action {
		case constant.ActionAdd, constant.ActionReplace, constant.ActionDelete:
			changed, err := o.mutator.Apply(ctx, action, recordIds(result.RetrievedRows), mutationDecision.NewContent)
			if err != nil {
				return nil, err
			}
			result.ChangedIds = changed
		default:
			o.logger.Warn("pipeline", "Mutation requested for non-mutating action, skipping", map[string]interface{}{
				"session_id": sessionId.String(), "action": action,
			})
		}
	}

	reply, err := o.respond(ctx, sessionId, query, map[string]interface{}{
		"intent":      result.Intent,
		"action":      result.Action,
		"row_ids":     result.ChangedIds,
		"context":     result.RetrievedRows,
		"new_content": result.NewContent,
	})
	if err != nil {
		return nil, &DependencyError{Dependency: "responder", Err: err}
	}
	result.FinalUserResponse = reply

	if err := o.conv.AppendAssistantMessage(ctx, sessionId, reply, map[string]interface{}{
		"intent":      result.Intent,
		"action":      decision.NormalizedAction(),
		"changed_ids": result.ChangedIds,
	}); err != nil {
		return nil, &DependencyError{Dependency: "conversation store", Err: err}
	}
	return result, nil
}

// shortCircuit answers a repeated query directly from history. The incoming
// user message is deliberately not appended; only the assistant turn lands.
func (o *Orchestrator) shortCircuit(ctx context.Context, sessionId uuid.UUID, query string) (*Result, error) {
	o.logger.Info("pipeline", "Repeated query, short-circuiting", map[string]interface{}{
		"session_id": sessionId.String(),
	})

	reply, err := o.respond(ctx, sessionId, query, nil)
	if err != nil {
		return nil, &DependencyError{Dependency: "responder", Err: err}
	}

	if err := o.conv.AppendAssistantMessage(ctx, sessionId, reply, map[string]interface{}{
		"repeated": true,
	}); err != nil {
		return nil, &DependencyError{Dependency: "conversation store", Err: err}
	}
	return &Result{
		ChangedIds:        []int64{},
		RetrievedRows:     []retrieval.Record{},
		FinalUserResponse: reply,
	}, nil
}

// fallback terminates the request with a fixed apology recorded as a normal
// assistant turn. It returns success to the caller: the degraded reply is
// the pipeline's answer, not a transport failure.
func (o *Orchestrator) fallback(ctx context.Context, sessionId uuid.UUID, message string, result *Result) (*Result, error) {
	if err := o.conv.AppendAssistantMessage(ctx, sessionId, message, map[string]interface{}{
		"fallback": true,
	}); err != nil {
		return nil, &DependencyError{Dependency: "conversation store", Err: err}
	}

	result.CallToDb = false
	if result.ChangedIds == nil {
		result.ChangedIds = []int64{}
	}
	if result.RetrievedRows == nil {
		result.RetrievedRows = []retrieval.Record{}
	}
	result.FinalUserResponse = message
	return result, nil
}

func (o *Orchestrator) classify(ctx context.Context, query string) (*stage.IntentDecision, error) {
	stageCtx, cancel := o.stageContext(ctx)
	defer cancel()
	return o.classifier.Classify(stageCtx, query)
}

func (o *Orchestrator) synthesize(ctx context.Context, decision *stage.IntentDecision, rows []retrieval.Record) (*stage.MutationDecision, error) {
	stageCtx, cancel := o.stageContext(ctx)
	defer cancel()
	return o.synthesizer.Synthesize(stageCtx, stage.SynthesisInput{
		Intent:           decision.Intent,
		Action:           decision.Action,
		OldFeature:       decision.OldFeature,
		NewFeature:       decision.NewFeature,
		RetrievedContext: rows,
	})
}

func (o *Orchestrator) respond(ctx context.Context, sessionId uuid.UUID, query string, additional map[string]interface{}) (string, error) {
	history, err := o.conv.History(ctx, sessionId)
	if err != nil {
		return "", err
	}

	stageCtx, cancel := o.stageContext(ctx)
	defer cancel()
	return o.responder.Respond(stageCtx, query, history, additional)
}

func (o *Orchestrator) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.stageTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.stageTimeout)
}

func recordIds(rows []retrieval.Record) []int64 {
	ids := make([]int64, len(rows))
	for i, row := range rows {
		ids[i] = row.Id
	}
	return ids
}
