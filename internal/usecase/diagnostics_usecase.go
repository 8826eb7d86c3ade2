package usecase

import (
	"context"

	"taskcommadmin/internal/domain/entity"
	"taskcommadmin/internal/domain/repository"
	"taskcommadmin/pkg/errors"
	"taskcommadmin/pkg/logger"
)

type DiagnosticsUseCase struct {
	messageRepo repository.MessageRepository
	backend     string
}

func NewDiagnosticsUseCase(messageRepo repository.MessageRepository, backend string) *DiagnosticsUseCase {
	return &DiagnosticsUseCase{
		messageRepo: messageRepo,
		backend:     backend,
	}
}

// DiagnoseMessage reports which read paths to messageID work for identity.
// Nothing is written.
func (uc *DiagnosticsUseCase) DiagnoseMessage(ctx context.Context, identity *entity.Identity, messageID string) (*entity.PermissionReport, error) {
	if messageID == "" {
		return nil, errors.BadRequest("Message id is required", nil)
	}

	report := uc.messageRepo.Probe(ctx, messageID)
	if report == nil {
		report = &entity.PermissionReport{}
	}
	if report.Checks == nil {
		report.Checks = []entity.PermissionCheck{}
	}
	if report.Backend == "" {
		report.Backend = uc.backend
	}
	report.Identity = identity

	for _, check := range report.Checks {
		logger.Debug("Diagnostics %s for message %s: allowed=%t %s", check.Name, messageID, check.Allowed, check.Detail)
	}
	return report, nil
}
