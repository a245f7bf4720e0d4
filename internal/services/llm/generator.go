package llm

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"autosub/internal/gapfill"
	"autosub/internal/logging"
)

// Completer is the part of Client the batch generator needs.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// BatchGenerator answers gap-fill tasks with a pool of workers sharing one
// rate limiter. Failed tasks are left out of the result.
type BatchGenerator struct {
	Client       Completer
	Workers      int
	Limiter      *Limiter
	Logger       *slog.Logger
	SystemPrompt string
}

// Generate runs every task and returns the successful outcomes in task order.
func (g *BatchGenerator) Generate(ctx context.Context, tasks []gapfill.Task) []gapfill.Outcome {
	if len(tasks) == 0 || g.Client == nil {
		return nil
	}
	logger := logging.NewComponentLogger(logging.WithContext(ctx, g.Logger), "llm")
	workers := max(1, min(g.Workers, len(tasks)))

	results := make([]gapfill.Outcome, len(tasks))
	jobs := make(chan int)
	sampler := logging.NewProgressSampler(25)
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		done int
	)

	logger.Info("starting batch generation",
		logging.Int("tasks", len(tasks)),
		logging.Int("workers", workers),
		logging.Duration("min_interval", g.Limiter.Interval()),
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = g.run(ctx, logger, tasks[idx])
				mu.Lock()
				done++
				if sampler.ShouldLog(done, len(tasks)) {
					logger.Info("batch generation progress", logging.Int("done", done), logging.Int("total", len(tasks)))
				}
				mu.Unlock()
			}
		}()
	}

feed:
	for idx := range tasks {
		select {
		case jobs <- idx:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	outcomes := make([]gapfill.Outcome, 0, len(tasks))
	for _, outcome := range results {
		if outcome.OK {
			outcomes = append(outcomes, outcome)
		}
	}
	return outcomes
}

func (g *BatchGenerator) run(ctx context.Context, logger *slog.Logger, task gapfill.Task) (outcome gapfill.Outcome) {
	outcome.ID = task.ID
	defer func() {
		if r := recover(); r != nil {
			logging.ErrorWithContext(logger, "generation task panicked", "llm_task_panic",
				logging.Int("task", task.ID),
				logging.String("panic", fmt.Sprint(r)),
				logging.String("stack", string(debug.Stack())),
			)
			outcome = gapfill.Outcome{ID: task.ID}
		}
	}()

	if err := g.Limiter.Wait(ctx); err != nil {
		return outcome
	}
	text, err := g.Client.Complete(ctx, g.SystemPrompt, task.Prompt)
	if err != nil {
		logging.WarnWithContext(logger, "generation task failed", "llm_task_failed",
			logging.Int("task", task.ID),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check API key, model names and quota"),
			logging.String(logging.FieldImpact, "affected gaps keep their marker until the next run"),
		)
		return outcome
	}
	outcome.Text = text
	outcome.OK = true
	return outcome
}
