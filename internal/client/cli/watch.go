package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/iudanet/invoicekeeper/internal/client/storage"
	clientsync "github.com/iudanet/invoicekeeper/internal/client/sync"
)

// cycleDrainer открывает базу только на время одного прогона очереди,
// между прогонами файл свободен для других команд
type cycleDrainer struct {
	open   func(ctx context.Context) (*localClient, error)
	logger *slog.Logger
}

func (d *cycleDrainer) Drain(ctx context.Context) (*clientsync.DrainResult, error) {
	local, err := d.open(ctx)
	if errors.Is(err, storage.ErrDatabaseLocked) {
		// Базу держит другая команда, очередь отправится на следующем переходе в online
		d.logger.WarnContext(ctx, "Database is busy, drain skipped", "error", err)
		return &clientsync.DrainResult{Skipped: true}, nil
	}
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := local.store.Close(); err != nil {
			d.logger.ErrorContext(ctx, "Failed to close database after drain", "error", err)
		}
	}()

	return local.engine.Drain(ctx)
}
