package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/gmfsales/liffbackend/apperrors"
	"github.com/gmfsales/liffbackend/clients/line"
	"github.com/gmfsales/liffbackend/database"
	"github.com/gmfsales/liffbackend/dto"
	"github.com/gmfsales/liffbackend/formatter"
	"github.com/gmfsales/liffbackend/metrics"
	"github.com/gmfsales/liffbackend/models"
	"github.com/gmfsales/liffbackend/monitoring"
	"github.com/gmfsales/liffbackend/utils"
	"github.com/gmfsales/liffbackend/validation"
)

// Outcome is the reconciled result of persistence and notification.
type Outcome string

const (
	OutcomeDelivered        Outcome = "delivered"
	OutcomeSavedNotNotified Outcome = "saved_not_notified"
	OutcomeFailed           Outcome = "failed"
)

// PersistenceStatus records what happened to the stored copy.
type PersistenceStatus string

const (
	PersistenceStored  PersistenceStatus = "stored"
	PersistenceSkipped PersistenceStatus = "skipped"
	PersistenceFailed  PersistenceStatus = "failed"
)

// SubmissionResult is returned for every inquiry that passed validation.
// InquiryID is set only when Persistence is PersistenceStored.
type SubmissionResult struct {
	Outcome         Outcome
	Persistence     PersistenceStatus
	InquiryID       string
	NotificationErr error
}

// SubmissionService defines the interface for handling inquiry submissions
type SubmissionService interface {
	Submit(ctx context.Context, in dto.InquiryInput, meta models.RequestMeta) (*SubmissionResult, error)
}

type submissionServiceImpl struct {
	store     database.InquiryStore
	notifier  line.Client
	formatter *formatter.Formatter
	archiver  utils.Archiver
	reporter  monitoring.Reporter
	log       *zap.Logger
	location  *time.Location
}

// NewSubmissionService wires the pipeline. store and archiver may be nil,
// which disables persistence and archiving respectively.
func NewSubmissionService(
	store database.InquiryStore,
	notifier line.Client,
	msgFormatter *formatter.Formatter,
	archiver utils.Archiver,
	reporter monitoring.Reporter,
	log *zap.Logger,
	location *time.Location,
) SubmissionService {
	if reporter == nil {
		reporter = monitoring.Nop()
	}
	return &submissionServiceImpl{
		store:     store,
		notifier:  notifier,
		formatter: msgFormatter,
		archiver:  archiver,
		reporter:  reporter,
		log:       log,
		location:  location,
	}
}

// Submit runs validate, sanitize, persist, notify and reconciles the
// outcome. The only error it returns is *apperrors.ValidationError; every
// downstream failure is folded into the result.
func (s *submissionServiceImpl) Submit(ctx context.Context, in dto.InquiryInput, meta models.RequestMeta) (*SubmissionResult, error) {
	log := s.log.With(zap.String("request_id", meta.RequestID))

	if err := validation.ValidateInquiry(in, meta.SubmittedAt, s.location); err != nil {
		metrics.SubmissionsTotal.WithLabelValues("invalid").Inc()
		log.Info("inquiry rejected", zap.Error(err))
		return nil, err
	}
	inq, err := validation.Sanitize(in, s.location)
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	result := &SubmissionResult{Persistence: PersistenceSkipped}
	if s.store != nil {
		s.persist(ctx, log, inq, meta, result)
	} else {
		metrics.PersistenceTotal.WithLabelValues(string(PersistenceSkipped)).Inc()
	}

	text := s.formatter.Format(inq, meta.SubmittedAt)
	result.NotificationErr = s.notify(ctx, log, inq.UserID, text, meta)

	switch {
	case result.NotificationErr == nil:
		result.Outcome = OutcomeDelivered
	case result.Persistence == PersistenceStored:
		result.Outcome = OutcomeSavedNotNotified
	default:
		result.Outcome = OutcomeFailed
	}
	metrics.SubmissionsTotal.WithLabelValues(string(result.Outcome)).Inc()

	if s.archiver != nil {
		s.archive(ctx, log, text, meta, result)
	}

	log.Info("inquiry processed",
		zap.String("outcome", string(result.Outcome)),
		zap.String("persistence", string(result.Persistence)),
		zap.String("inquiry_id", result.InquiryID),
	)
	return result, nil
}

func (s *submissionServiceImpl) persist(ctx context.Context, log *zap.Logger, inq models.SanitizedInquiry, meta models.RequestMeta, result *SubmissionResult) {
	id, err := s.store.Create(ctx, models.NewStoredInquiry(inq, meta))
	if err != nil {
		result.Persistence = PersistenceFailed
		metrics.PersistenceTotal.WithLabelValues(string(PersistenceFailed)).Inc()
		log.Error("failed to persist inquiry", zap.Error(err))
		s.reporter.CaptureException(err, map[string]string{
			"component":  "persistence",
			"code":       string(apperrors.CodePersistenceFailed),
			"request_id": meta.RequestID,
		})
		return
	}
	result.Persistence = PersistenceStored
	result.InquiryID = id
	metrics.PersistenceTotal.WithLabelValues(string(PersistenceStored)).Inc()
}

func (s *submissionServiceImpl) notify(ctx context.Context, log *zap.Logger, to, text string, meta models.RequestMeta) error {
	start := time.Now()
	err := s.notifier.Push(ctx, to, text)

	label := "success"
	if err != nil {
		label = "error"
		var ne *apperrors.NotificationError
		if errors.As(err, &ne) {
			label = string(ne.Kind)
		}
	}
	metrics.NotificationsTotal.WithLabelValues(label).Inc()
	metrics.NotificationDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())

	if err != nil {
		log.Error("failed to push LINE notification", zap.String("kind", label), zap.Error(err))
		s.reporter.CaptureException(err, map[string]string{
			"component":  "notification",
			"code":       string(apperrors.CodeNotificationFailed),
			"kind":       label,
			"request_id": meta.RequestID,
		})
	}
	return err
}

// archive is best-effort and never changes the result.
func (s *submissionServiceImpl) archive(ctx context.Context, log *zap.Logger, text string, meta models.RequestMeta, result *SubmissionResult) {
	id := result.InquiryID
	if id == "" {
		id = meta.RequestID
	}
	if id == "" {
		return
	}
	key := utils.ArchiveKey(meta.SubmittedAt, id)
	if err := s.archiver.Archive(ctx, key, text); err != nil {
		metrics.ArchiveTotal.WithLabelValues("failed").Inc()
		log.Warn("failed to archive transcript", zap.String("key", key), zap.Error(err))
		return
	}
	metrics.ArchiveTotal.WithLabelValues("stored").Inc()
}
