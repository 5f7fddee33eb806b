package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	domainerrors "ijaism/contexts/editorial-workflow/manuscript-service/domain/errors"
	"ijaism/contexts/editorial-workflow/manuscript-service/ports"
)

const defaultIdempotencyTTL = 7 * 24 * time.Hour

func hashRequest(payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:]), nil
}

// scopedKey keeps keys from different operations and callers apart.
func scopedKey(operation string, actorID string, key string) string {
	return operation + ":" + strings.TrimSpace(actorID) + ":" + strings.TrimSpace(key)
}

// loadReplay decodes a stored response into out. It reports false when no
// record exists for key.
func loadReplay(ctx context.Context, store ports.IdempotencyStore, key string, requestHash string, now time.Time, out any) (bool, error) {
	record, found, err := store.GetRecord(ctx, key, now)
	if err != nil || !found {
		return false, err
	}
	if record.RequestHash != requestHash {
		return false, domainerrors.ErrIdempotencyConflict
	}
	if err := json.Unmarshal(record.ResponsePayload, out); err != nil {
		return false, err
	}
	return true, nil
}

func saveReplay(
	ctx context.Context,
	store ports.IdempotencyStore,
	operation string,
	key string,
	requestHash string,
	now time.Time,
	ttl time.Duration,
	response any,
) error {
	payload, err := json.Marshal(response)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return store.PutRecord(ctx, ports.IdempotencyRecord{
		Key:             key,
		Operation:       operation,
		RequestHash:     requestHash,
		ResponsePayload: payload,
		ExpiresAt:       now.Add(ttl),
	})
}

// recordReplay stores the response of a write that has already committed.
// A failed store is logged and the committed result still stands.
func recordReplay(
	ctx context.Context,
	logger *slog.Logger,
	store ports.IdempotencyStore,
	operation string,
	key string,
	requestHash string,
	now time.Time,
	ttl time.Duration,
	response any,
) {
	if err := saveReplay(ctx, store, operation, key, requestHash, now, ttl, response); err != nil {
		logger.Warn("idempotency record not stored",
			"event", "idempotency_record_store_failed",
			"module", "editorial-workflow/manuscript-service",
			"layer", "application",
			"operation", operation,
			"error", err.Error(),
		)
	}
}
