package pipeline

import (
	"context"

	"github.com/jonathan/klachtbrief/internal/types"
	"golang.org/x/sync/errgroup"
)

// SelfTest runs letter through both modes concurrently, without context,
// and returns both results. The first failure cancels the other run.
func (o *Orchestrator) SelfTest(ctx context.Context, letter string) (types.PromptTestResponse, error) {
	var result types.PromptTestResponse

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		text, err := o.Run(gctx, types.LetterRequest{Text: letter, Mode: types.ModeRewrite})
		result.Rewrite = text
		return err
	})
	g.Go(func() error {
		text, err := o.Run(gctx, types.LetterRequest{Text: letter, Mode: types.ModeResponse})
		result.Response = text
		return err
	})

	if err := g.Wait(); err != nil {
		return types.PromptTestResponse{}, err
	}
	return result, nil
}
