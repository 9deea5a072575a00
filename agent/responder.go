package agent

import (
	"context"
	"strings"

	"github.com/effective-security/xlog"
)

// Responder is the terminal node. It does not call the model; it assembles
// the prepared context for the streaming generation that happens outside
// the graph, then signals the run is ready for it.
type Responder struct{}

func NewResponder() *Responder {
	return &Responder{}
}

func (n *Responder) Kind() NodeKind {
	return NodeResponder
}

func (n *Responder) Run(ctx context.Context, cc *ConversationContext) (NodeKind, error) {
	cc.Phase = PhaseResponding

	parts := []string{"User Query: " + cc.UserMessage}
	if len(cc.AccumulatedEvidence) > 0 {
		parts = append(parts, "Information Gathered:")
		parts = append(parts, cc.AccumulatedEvidence...)
	}

	if err := cc.SetFinalContext(strings.Join(parts, "\n\n")); err != nil {
		return "", err
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "context_prepared",
		"conversation", cc.ConversationID,
		"evidence_lines", len(cc.AccumulatedEvidence))
	return NodeEnd, nil
}
