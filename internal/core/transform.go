package core

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/agenthands/steward/internal/driver"
	"github.com/agenthands/steward/internal/transform"
)

const maxAuditOutput = 2000

// RunTransform triggers the external transformation job and records the
// outcome in the change log. A failed audit write is logged, not returned.
func (s *Steward) RunTransform(ctx context.Context, steward string) (*transform.Result, error) {
	if s.Transform == nil {
		return nil, ErrTransformMissing
	}

	runID := s.NewID()
	res, runErr := s.Transform.Run(ctx)
	if errors.Is(runErr, transform.ErrRunning) {
		return nil, runErr
	}

	action := "transform_completed"
	detail := map[string]string{}
	if runErr != nil {
		action = "transform_failed"
		detail["error"] = tail(runErr.Error())
	} else {
		detail["output"] = tail(res.Output)
		detail["elapsed"] = res.Elapsed.String()
	}

	b, _ := json.Marshal(detail)
	if err := s.Gateway.ExecuteWriteBatch(ctx, []driver.Statement{
		s.auditStatement("transform_run", runID, action, steward, string(b)),
	}); err != nil {
		s.log.Warn("failed to audit transform run", "run", runID, "error", err)
	}

	if runErr != nil {
		return nil, runErr
	}
	return res, nil
}

func tail(s string) string {
	if len(s) <= maxAuditOutput {
		return s
	}
	return "..." + s[len(s)-maxAuditOutput:]
}
