package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/clearance"
	"github.com/aretw0/clearance/internal/presentation/tui"
	"github.com/aretw0/clearance/pkg/domain"
	"github.com/google/uuid"
	"github.com/muesli/termenv"
)

// RunSession runs one terminal conversation until the user quits, input
// ends or a signal arrives. The session is saved after every turn, so the
// same --session resumes where it stopped.
func RunSession(opts RunOptions) error {
	opts = opts.withDefaults()
	logger := createLogger(opts.Debug)

	engine, err := createEngine(opts, logger)
	if err != nil {
		return err
	}

	if opts.SessionID == "" {
		opts.SessionID = uuid.NewString()
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	if opts.Fresh {
		if err := engine.Sessions().Delete(sigCtx, opts.SessionID); err != nil {
			return fmt.Errorf("failed to reset session: %w", err)
		}
	}

	var handler IOHandler
	if opts.JSON {
		handler = NewJSONHandler(opts.In, opts.Out)
	} else {
		profile := termenv.NewOutput(opts.Out).Profile
		tui.PrintBanner(opts.Out, profile, opts.Version)
		text := NewTextHandler(opts.In, opts.Out,
			WithTextRenderer(tui.NewRenderer()),
			WithTextProfile(profile),
		)
		defer text.Close()
		handler = text
		_, err := engine.Inspect(sigCtx, opts.SessionID)
		switch {
		case err == nil:
			printSystemMessage(opts.Out, "Resuming session '%s'. Type %s to pause.", opts.SessionID, quitCommand)
		case errors.Is(err, domain.ErrSessionNotFound):
			printSystemMessage(opts.Out, "Session '%s' active. Type %s to pause.", opts.SessionID, quitCommand)
		default:
			return fmt.Errorf("failed to init session: %w", err)
		}
	}

	last, runErr := Converse(sigCtx, engine, opts.SessionID, handler)
	if sigCtx.Err() != nil && runErr == nil {
		runErr = sigCtx.Err()
	}
	if !opts.JSON {
		logCompletion(opts.Out, last, runErr, sigCtx.Signal())
	}
	return handleExecutionError(runErr)
}

// Converse drives the render, input, advance loop. It returns the last
// state shown and the error that ended the loop.
func Converse(ctx context.Context, engine *clearance.Engine, sessionID string, h IOHandler) (domain.StateID, error) {
	view, err := engine.State(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if err := h.Output(ctx, &domain.Turn{View: view}); err != nil {
		return view.StateID, err
	}

	for {
		input, err := h.Input(ctx, view)
		if err != nil {
			return view.StateID, err
		}
		turn, err := engine.Advance(ctx, sessionID, input)
		if err != nil {
			return view.StateID, err
		}
		if err := h.Output(ctx, turn); err != nil {
			return turn.StateID, err
		}
		view = turn.View
	}
}
