package matches

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-match/internal/analysis"
	"resume-match/internal/events"
	"resume-match/internal/shared/metrics"
	"resume-match/internal/shared/storage/object"
	"resume-match/internal/shared/telemetry"
	"resume-match/internal/shared/util"
	"resume-match/internal/users"
)

// DefaultPreviewLength is the number of runes of the job description kept in list items.
const DefaultPreviewLength = 100

// UserDirectory resolves owner details for the detail view.
type UserDirectory interface {
	Lookup(ctx context.Context, id string) (users.User, error)
}

// Service runs the match pipeline and serves stored records.
type Service struct {
	Repo          Repo
	Intake        *Intake
	Store         object.Store
	Analyzer      analysis.Analyzer
	Users         UserDirectory
	Events        events.Publisher
	PreviewLength int

	now   func() time.Time
	newID func() string
}

// Submitted is the outcome of a successful Submit.
type Submitted struct {
	Record MatchRecord
	Result analysis.Result
}

// Submit validates and stages the upload, calls the analysis provider and
// persists the record. Once the upload is accepted, request cancellation no
// longer aborts the pipeline and the staged file is removed on every exit path.
func (s *Service) Submit(ctx context.Context, file *Upload, jobDescription string, req Requester) (Submitted, error) {
	sub, err := s.Intake.Accept(ctx, file, jobDescription, req)
	if err != nil {
		return Submitted{}, err
	}

	ctx = context.WithoutCancel(ctx)
	defer s.removeStaged(ctx, sub.StoredFileName, req.ID)

	result := s.Analyzer.Analyze(ctx, analysis.Document{
		Bytes:       sub.Bytes,
		FileName:    sub.OriginalFileName,
		ContentType: sub.ContentType,
	}, sub.JobDescription)

	rec, err := s.Create(ctx, sub.OwnerID, sub.StoredFileName, sub.OriginalFileName, sub.JobDescription, result)
	if err != nil {
		return Submitted{}, err
	}
	return Submitted{Record: rec, Result: result}, nil
}

// Create persists a new record from a gateway result.
func (s *Service) Create(ctx context.Context, ownerID, storedFileName, originalFileName, jobDescription string, result analysis.Result) (MatchRecord, error) {
	if strings.TrimSpace(ownerID) == "" {
		return MatchRecord{}, fmt.Errorf("%w: owner id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(jobDescription) == "" {
		return MatchRecord{}, ErrMissingJobDescription
	}

	now := s.clock()
	rec := MatchRecord{
		ID:             s.id(),
		OwnerID:        ownerID,
		StoredFileName: storedFileName,
		JobDescription: jobDescription,
		Analysis:       result.Analysis.Normalize(),
		MatchScore:     clampStored(result.MatchScore),
		Feedback:       result.Feedback,
		AnalysisStatus: AnalysisCompleted,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if name := strings.TrimSpace(originalFileName); name != "" {
		rec.OriginalFileName = &name
	}
	if result.Fallback {
		rec.AnalysisStatus = AnalysisFallback
	}

	if err := s.Repo.Create(ctx, rec); err != nil {
		telemetry.Error("match.create_failed", map[string]any{
			"user_id": ownerID,
			"error":   err,
		})
		return MatchRecord{}, fmt.Errorf("persist match record: %w", err)
	}

	metrics.IncMatchCreated(string(Classify(rec.MatchScore)))
	metrics.ObserveMatchScore(rec.MatchScore)
	if rec.AnalysisStatus == AnalysisFallback {
		metrics.IncMatchFallback()
	}
	telemetry.Info("match.created", map[string]any{
		"user_id":         ownerID,
		"match_id":        rec.ID,
		"match_score":     rec.MatchScore,
		"analysis_status": string(rec.AnalysisStatus),
	})
	s.publish(ctx, events.TypeMatchCreated, rec)
	return rec, nil
}

// Get returns a record the requester owns. Unknown ids are reported before
// ownership is checked.
func (s *Service) Get(ctx context.Context, id string, req Requester) (MatchRecord, error) {
	if strings.TrimSpace(id) == "" {
		return MatchRecord{}, ErrNotFound
	}
	rec, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return MatchRecord{}, err
	}
	if rec.OwnerID != req.ID {
		return MatchRecord{}, ErrForbidden
	}
	return rec, nil
}

// View returns the full detail view of a record the requester owns.
func (s *Service) View(ctx context.Context, id string, req Requester) (Detail, error) {
	rec, err := s.Get(ctx, id, req)
	if err != nil {
		return Detail{}, err
	}

	owner := Owner{Name: req.Name, Email: req.Email}
	if s.Users != nil {
		user, err := s.Users.Lookup(ctx, rec.OwnerID)
		if err != nil {
			telemetry.Warn("match.owner_lookup_failed", map[string]any{
				"user_id":  rec.OwnerID,
				"match_id": rec.ID,
				"error":    err,
			})
		} else {
			if user.Name != "" {
				owner.Name = user.Name
			}
			if user.Email != "" {
				owner.Email = user.Email
			}
		}
	}

	return Detail{
		ID:               rec.ID,
		FileName:         rec.StoredFileName,
		OriginalFileName: rec.DisplayName(),
		UploadDate:       rec.CreatedAt,
		Owner:            owner,
		JobDescription:   rec.JobDescription,
		Analysis:         rec.Analysis.Normalize(),
		MatchScore:       rec.MatchScore,
		Feedback:         rec.Feedback,
		Status:           Classify(rec.MatchScore),
	}, nil
}

// List returns summaries of the requester's records, newest first.
func (s *Service) List(ctx context.Context, req Requester) ([]Summary, error) {
	records, err := s.Repo.ListByOwner(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	preview := s.PreviewLength
	if preview <= 0 {
		preview = DefaultPreviewLength
	}

	out := make([]Summary, 0, len(records))
	for _, rec := range records {
		out = append(out, Summary{
			ID:             rec.ID,
			FileName:       rec.DisplayName(),
			JobDescription: util.TruncateRunes(rec.JobDescription, preview),
			MatchScore:     rec.MatchScore,
			Status:         Classify(rec.MatchScore),
			UploadDate:     rec.CreatedAt,
			LastModified:   rec.UpdatedAt,
		})
	}
	return out, nil
}

// Stats aggregates the requester's records.
func (s *Service) Stats(ctx context.Context, req Requester) (Stats, error) {
	records, err := s.Repo.ListByOwner(ctx, req.ID)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(records, s.clock()), nil
}

// Delete removes a record the requester owns and then tries to remove its
// backing file. File removal problems are logged only.
func (s *Service) Delete(ctx context.Context, id string, req Requester) error {
	rec, err := s.Get(ctx, id, req)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, rec.ID); err != nil {
		return err
	}

	if s.Store != nil && rec.StoredFileName != "" {
		if err := s.Store.Delete(ctx, rec.StoredFileName); err != nil && !errors.Is(err, object.ErrNotFound) {
			telemetry.Warn("match.file_delete_failed", map[string]any{
				"user_id":  rec.OwnerID,
				"match_id": rec.ID,
				"key":      rec.StoredFileName,
				"error":    err,
			})
		}
	}

	metrics.IncMatchDeleted()
	telemetry.Info("match.deleted", map[string]any{
		"user_id":  rec.OwnerID,
		"match_id": rec.ID,
	})
	s.publish(ctx, events.TypeMatchDeleted, rec)
	return nil
}

func (s *Service) removeStaged(ctx context.Context, key, userID string) {
	if s.Store == nil || key == "" {
		return
	}
	if err := s.Store.Delete(ctx, key); err != nil && !errors.Is(err, object.ErrNotFound) {
		telemetry.Warn("match.staged_cleanup_failed", map[string]any{
			"user_id": userID,
			"key":     key,
			"error":   err,
		})
	}
}

func (s *Service) publish(ctx context.Context, eventType string, rec MatchRecord) {
	if s.Events == nil {
		return
	}
	evt := events.Event{
		Type:       eventType,
		MatchID:    rec.ID,
		OwnerID:    rec.OwnerID,
		MatchScore: rec.MatchScore,
		Status:     string(Classify(rec.MatchScore)),
		OccurredAt: s.clock(),
	}
	if err := s.Events.Publish(ctx, evt); err != nil {
		metrics.IncEventPublishFailed()
		telemetry.Warn("match.event_publish_failed", map[string]any{
			"event":    eventType,
			"match_id": rec.ID,
			"error":    err,
		})
	}
}

func (s *Service) clock() time.Time {
	if s.now != nil {
		return s.now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) id() string {
	if s.newID != nil {
		return s.newID()
	}
	return uuid.NewString()
}

func clampStored(score int) int {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	default:
		return score
	}
}
