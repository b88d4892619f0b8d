package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/journihealth/journi_backend/internal/repository"
	"github.com/journihealth/journi_backend/pkg/reqctx"
)

type fixture struct {
	svc   Service
	repos *repository.Repositories

	practiceID string
	supervisor *repository.Supervisor
	therapist  *repository.Therapist
	patient    *repository.Patient

	therapistActor  *reqctx.Actor
	supervisorActor *reqctx.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	repos := repository.NewMemory()
	practiceID := uuid.NewString()

	sup := &repository.Supervisor{
		ID:         uuid.NewString(),
		UserID:     uuid.NewString(),
		PracticeID: practiceID,
		FirstName:  "Sana",
		LastName:   "Okafor",
	}
	if err := repos.Supervisors.Create(ctx, sup); err != nil {
		t.Fatalf("create supervisor: %v", err)
	}

	th := &repository.Therapist{
		ID:           uuid.NewString(),
		UserID:       uuid.NewString(),
		PracticeID:   practiceID,
		SupervisorID: sup.ID,
		FirstName:    "Tess",
		LastName:     "Nguyen",
	}
	if err := repos.Therapists.Create(ctx, th); err != nil {
		t.Fatalf("create therapist: %v", err)
	}

	p := &repository.Patient{
		ID:          uuid.NewString(),
		PracticeID:  practiceID,
		TherapistID: th.ID,
		FirstName:   "Alex",
		LastName:    "Rivera",
	}
	if err := repos.Patients.Create(ctx, p); err != nil {
		t.Fatalf("create patient: %v", err)
	}

	return &fixture{
		svc:        New(repos),
		repos:      repos,
		practiceID: practiceID,
		supervisor: sup,
		therapist:  th,
		patient:    p,
		therapistActor: &reqctx.Actor{
			PrincipalID:  th.UserID,
			RoleTag:      reqctx.RoleTagUser,
			PracticeID:   practiceID,
			PracticeRole: repository.RoleTherapist,
		},
		supervisorActor: &reqctx.Actor{
			PrincipalID:  sup.UserID,
			RoleTag:      reqctx.RoleTagUser,
			PracticeID:   practiceID,
			PracticeRole: repository.RoleSupervisor,
		},
	}
}

func (f *fixture) createNote(t *testing.T) *repository.SessionNote {
	t.Helper()
	n, err := f.svc.Create(context.Background(), f.therapistActor, CreateSessionRequest{
		PatientID:      f.patient.ID,
		ScheduledStart: time.Now().Add(-time.Hour),
		ScheduledEnd:   time.Now(),
		SessionType:    repository.SessionFollowUp,
		Subjective:     "Reports improved sleep.",
	})
	if err != nil {
		t.Fatalf("create note: %v", err)
	}
	return n
}

func TestCreateStartsAsDraft(t *testing.T) {
	f := newFixture(t)
	n := f.createNote(t)

	if n.ReviewStatus != repository.ReviewDraft {
		t.Errorf("status = %q, want DRAFT", n.ReviewStatus)
	}
	if n.TherapistID != f.therapist.ID {
		t.Errorf("therapist = %q, want caller's profile", n.TherapistID)
	}
}

func TestCreateRequiresAssignedPatient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// A patient assigned to a different therapist.
	other := &repository.Patient{
		ID:          uuid.NewString(),
		PracticeID:  f.practiceID,
		TherapistID: uuid.NewString(),
		FirstName:   "Morgan",
		LastName:    "Lee",
	}
	if err := f.repos.Patients.Create(ctx, other); err != nil {
		t.Fatalf("create patient: %v", err)
	}

	req := CreateSessionRequest{
		PatientID:      other.ID,
		ScheduledStart: time.Now(),
		ScheduledEnd:   time.Now().Add(time.Hour),
		SessionType:    repository.SessionInitial,
	}
	if _, err := f.svc.Create(ctx, f.therapistActor, req); !errors.Is(err, ErrPatientNotAssigned) {
		t.Errorf("foreign patient: got %v, want ErrPatientNotAssigned", err)
	}

	req.PatientID = uuid.NewString()
	if _, err := f.svc.Create(ctx, f.therapistActor, req); !errors.Is(err, ErrPatientNotAssigned) {
		t.Errorf("unknown patient: got %v, want ErrPatientNotAssigned", err)
	}
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.therapistActor, CreateSessionRequest{
		PatientID:      f.patient.ID,
		ScheduledStart: time.Now(),
		ScheduledEnd:   time.Now().Add(time.Hour),
		SessionType:    "OTHER",
	})
	if !errors.Is(err, ErrInvalidSessionType) {
		t.Errorf("bad type: got %v, want ErrInvalidSessionType", err)
	}

	start := time.Now()
	_, err = f.svc.Create(ctx, f.therapistActor, CreateSessionRequest{
		PatientID:      f.patient.ID,
		ScheduledStart: start,
		ScheduledEnd:   start,
		SessionType:    repository.SessionInitial,
	})
	if !errors.Is(err, ErrInvalidSchedule) {
		t.Errorf("end not after start: got %v, want ErrInvalidSchedule", err)
	}
}

func TestUpdateOnlyDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	n := f.createNote(t)

	plan := "Continue weekly sessions."
	updated, err := f.svc.Update(ctx, f.therapistActor, n.ID, UpdateSessionRequest{Plan: &plan})
	if err != nil {
		t.Fatalf("update draft: %v", err)
	}
	if updated.Plan != plan {
		t.Errorf("plan = %q, want %q", updated.Plan, plan)
	}

	if _, err := f.svc.SendForReview(ctx, f.therapistActor, n.ID); err != nil {
		t.Fatalf("send for review: %v", err)
	}

	if _, err := f.svc.Update(ctx, f.therapistActor, n.ID, UpdateSessionRequest{Plan: &plan}); !errors.Is(err, ErrNotDraft) {
		t.Errorf("update pending note: got %v, want ErrNotDraft", err)
	}
}

func TestUpdateForeignNoteLooksAbsent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	n := f.createNote(t)

	// Another therapist in the same practice.
	other := &repository.Therapist{
		ID:         uuid.NewString(),
		UserID:     uuid.NewString(),
		PracticeID: f.practiceID,
	}
	if err := f.repos.Therapists.Create(ctx, other); err != nil {
		t.Fatalf("create therapist: %v", err)
	}
	otherActor := &reqctx.Actor{
		PrincipalID:  other.UserID,
		RoleTag:      reqctx.RoleTagUser,
		PracticeID:   f.practiceID,
		PracticeRole: repository.RoleTherapist,
	}

	plan := "x"
	if _, err := f.svc.Update(ctx, otherActor, n.ID, UpdateSessionRequest{Plan: &plan}); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign note: got %v, want ErrNotFound", err)
	}
}

func TestReviewWorkflow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	n := f.createNote(t)

	// DRAFT cannot be approved directly.
	if _, err := f.svc.Approve(ctx, f.supervisorActor, n.ID, ""); !errors.Is(err, ErrNotPending) {
		t.Fatalf("approve draft: got %v, want ErrNotPending", err)
	}

	sent, err := f.svc.SendForReview(ctx, f.therapistActor, n.ID)
	if err != nil {
		t.Fatalf("send for review: %v", err)
	}
	if sent.ReviewStatus != repository.ReviewPending {
		t.Errorf("status = %q, want PENDING", sent.ReviewStatus)
	}

	// PENDING cannot be re-sent.
	if _, err := f.svc.SendForReview(ctx, f.therapistActor, n.ID); !errors.Is(err, ErrNotDraftForReview) {
		t.Errorf("re-send pending: got %v, want ErrNotDraftForReview", err)
	}

	approved, err := f.svc.Approve(ctx, f.supervisorActor, n.ID, "Good work.")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.ReviewStatus != repository.ReviewApproved {
		t.Errorf("status = %q, want APPROVED", approved.ReviewStatus)
	}

	// Terminal states are final.
	if _, err := f.svc.Reject(ctx, f.supervisorActor, n.ID, "changed my mind"); !errors.Is(err, ErrNotPending) {
		t.Errorf("reject approved: got %v, want ErrNotPending", err)
	}
	if _, err := f.svc.SendForReview(ctx, f.therapistActor, n.ID); !errors.Is(err, ErrNotDraftForReview) {
		t.Errorf("re-send approved: got %v, want ErrNotDraftForReview", err)
	}
}

func TestRejectRequiresComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	n := f.createNote(t)

	if _, err := f.svc.SendForReview(ctx, f.therapistActor, n.ID); err != nil {
		t.Fatalf("send for review: %v", err)
	}

	if _, err := f.svc.Reject(ctx, f.supervisorActor, n.ID, "  "); !errors.Is(err, ErrCommentRequired) {
		t.Fatalf("empty comment: got %v, want ErrCommentRequired", err)
	}

	rejected, err := f.svc.Reject(ctx, f.supervisorActor, n.ID, "Objective section is empty.")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.ReviewStatus != repository.ReviewRejected {
		t.Errorf("status = %q, want REJECTED", rejected.ReviewStatus)
	}
	if rejected.ReviewComment != "Objective section is empty." {
		t.Errorf("comment = %q", rejected.ReviewComment)
	}
}

func TestOnlyAssignedSupervisorReviews(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	n := f.createNote(t)

	if _, err := f.svc.SendForReview(ctx, f.therapistActor, n.ID); err != nil {
		t.Fatalf("send for review: %v", err)
	}

	other := &repository.Supervisor{
		ID:         uuid.NewString(),
		UserID:     uuid.NewString(),
		PracticeID: f.practiceID,
	}
	if err := f.repos.Supervisors.Create(ctx, other); err != nil {
		t.Fatalf("create supervisor: %v", err)
	}
	otherActor := &reqctx.Actor{
		PrincipalID:  other.UserID,
		RoleTag:      reqctx.RoleTagUser,
		PracticeID:   f.practiceID,
		PracticeRole: repository.RoleSupervisor,
	}

	if _, err := f.svc.Approve(ctx, otherActor, n.ID, ""); !errors.Is(err, ErrNotSupervised) {
		t.Errorf("unassigned supervisor: got %v, want ErrNotSupervised", err)
	}
}

func TestPendingReviewQueue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.createNote(t)
	second := f.createNote(t)
	f.createNote(t) // stays DRAFT

	for _, id := range []string{first.ID, second.ID} {
		if _, err := f.svc.SendForReview(ctx, f.therapistActor, id); err != nil {
			t.Fatalf("send for review: %v", err)
		}
	}

	queue, err := f.svc.PendingReview(ctx, f.supervisorActor)
	if err != nil {
		t.Fatalf("pending review: %v", err)
	}
	if len(queue) != 2 {
		t.Errorf("queue = %d, want 2", len(queue))
	}
	for _, n := range queue {
		if n.ReviewStatus != repository.ReviewPending {
			t.Errorf("queued note status = %q, want PENDING", n.ReviewStatus)
		}
	}
}

func TestDraftsAndUpcoming(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	past := f.createNote(t)

	future, err := f.svc.Create(ctx, f.therapistActor, CreateSessionRequest{
		PatientID:      f.patient.ID,
		ScheduledStart: time.Now().Add(24 * time.Hour),
		ScheduledEnd:   time.Now().Add(25 * time.Hour),
		SessionType:    repository.SessionFollowUp,
	})
	if err != nil {
		t.Fatalf("create future note: %v", err)
	}

	drafts, err := f.svc.Drafts(ctx, f.therapistActor)
	if err != nil {
		t.Fatalf("drafts: %v", err)
	}
	if len(drafts) != 2 {
		t.Errorf("drafts = %d, want 2", len(drafts))
	}

	upcoming, err := f.svc.Upcoming(ctx, f.therapistActor)
	if err != nil {
		t.Fatalf("upcoming: %v", err)
	}
	if len(upcoming) != 1 || upcoming[0].ID != future.ID {
		t.Errorf("upcoming = %v, want only the future note", upcoming)
	}

	// A sent note leaves the draft list.
	if _, err := f.svc.SendForReview(ctx, f.therapistActor, past.ID); err != nil {
		t.Fatalf("send for review: %v", err)
	}
	drafts, err = f.svc.Drafts(ctx, f.therapistActor)
	if err != nil {
		t.Fatalf("drafts: %v", err)
	}
	if len(drafts) != 1 {
		t.Errorf("drafts after send = %d, want 1", len(drafts))
	}
}

func TestPatientHistoryAndLatest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	older, err := f.svc.Create(ctx, f.therapistActor, CreateSessionRequest{
		PatientID:      f.patient.ID,
		ScheduledStart: time.Now().Add(-48 * time.Hour),
		ScheduledEnd:   time.Now().Add(-47 * time.Hour),
		SessionType:    repository.SessionInitial,
	})
	if err != nil {
		t.Fatalf("create older: %v", err)
	}
	newer := f.createNote(t)

	history, err := f.svc.PatientHistory(ctx, f.therapistActor, f.patient.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history = %d, want 2", len(history))
	}
	if history[0].ID != newer.ID || history[1].ID != older.ID {
		t.Error("history not ordered newest first")
	}

	latest, err := f.svc.Latest(ctx, f.therapistActor, f.patient.ID)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.ID != newer.ID {
		t.Errorf("latest = %q, want %q", latest.ID, newer.ID)
	}
}

func TestDeleteScopes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// A therapist deletes their own note in any state.
	n := f.createNote(t)
	if _, err := f.svc.SendForReview(ctx, f.therapistActor, n.ID); err != nil {
		t.Fatalf("send for review: %v", err)
	}
	if err := f.svc.Delete(ctx, f.therapistActor, n.ID); err != nil {
		t.Fatalf("delete pending: %v", err)
	}
	if _, err := f.svc.Get(ctx, f.therapistActor, n.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("get deleted: got %v, want ErrNotFound", err)
	}

	// A foreign therapist cannot delete it; an admin can.
	other := f.createNote(t)
	foreign := &reqctx.Actor{
		PrincipalID:  uuid.NewString(),
		RoleTag:      reqctx.RoleTagUser,
		PracticeID:   f.practiceID,
		PracticeRole: repository.RoleTherapist,
	}
	if err := f.svc.Delete(ctx, foreign, other.ID); err == nil {
		t.Error("foreign therapist deleted someone else's note")
	}

	admin := &reqctx.Actor{
		PrincipalID:  uuid.NewString(),
		RoleTag:      reqctx.RoleTagUser,
		PracticeID:   f.practiceID,
		PracticeRole: repository.RoleAdmin,
	}
	if err := f.svc.Delete(ctx, admin, other.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
}

func TestPracticeListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	draft := f.createNote(t)
	pending := f.createNote(t)
	if _, err := f.svc.SendForReview(ctx, f.therapistActor, pending.ID); err != nil {
		t.Fatalf("send for review: %v", err)
	}

	admin := &reqctx.Actor{
		PrincipalID:  uuid.NewString(),
		RoleTag:      reqctx.RoleTagUser,
		PracticeID:   f.practiceID,
		PracticeRole: repository.RoleAdmin,
	}

	all, err := f.svc.List(ctx, admin, ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(all))
	}

	drafts, err := f.svc.List(ctx, admin, ListFilter{ReviewStatus: repository.ReviewDraft})
	if err != nil {
		t.Fatalf("list drafts: %v", err)
	}
	if len(drafts) != 1 || drafts[0].ID != draft.ID {
		t.Fatalf("expected only the draft, got %d notes", len(drafts))
	}

	mine, err := f.svc.List(ctx, admin, ListFilter{TherapistID: f.therapist.ID})
	if err != nil {
		t.Fatalf("list by therapist: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 notes for therapist, got %d", len(mine))
	}

	none, err := f.svc.List(ctx, admin, ListFilter{TherapistID: uuid.NewString()})
	if err != nil {
		t.Fatalf("list foreign therapist: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no notes, got %d", len(none))
	}
}
