package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/biasdetektiv/study-backend/internal/repos"
	"github.com/biasdetektiv/study-backend/internal/types"
)

func newAdminFixture(t *testing.T, password, passwordHash string, ttl time.Duration) (AdminService, StudyService) {
	t.Helper()
	db := newTestDB(t)
	log := testLogger(t)
	participantRepo := repos.NewParticipantRepo(db, log)
	sessionRepo := repos.NewSessionRepo(db, log)
	runRepo := repos.NewScenarioRunRepo(db, log)
	jobRepo := repos.NewAnalysisJobRepo(db, log)

	admin := NewAdminService(log, participantRepo, sessionRepo, runRepo, password, passwordHash, "test-secret", ttl)
	study := NewStudyService(db, log, participantRepo, sessionRepo, runRepo, jobRepo)
	return admin, study
}

func TestAdminLogin(t *testing.T) {
	admin, _ := newAdminFixture(t, "hunter2", "", time.Hour)

	if _, err := admin.Login("wrong"); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}

	token, err := admin.Login("hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if token == "" {
		t.Fatal("expected a signed token")
	}
	if err := admin.VerifyToken(token); err != nil {
		t.Fatalf("freshly issued token must verify: %v", err)
	}
}

func TestAdminLoginWithHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	admin, _ := newAdminFixture(t, "ignored", string(hash), time.Hour)

	if _, err := admin.Login("hunter2"); err != nil {
		t.Fatalf("hash login failed: %v", err)
	}
	// The plain password is ignored once a hash is configured.
	if _, err := admin.Login("ignored"); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("plain password must not work alongside a hash, got %v", err)
	}
}

func TestVerifyTokenRejectsGarbageAndExpiry(t *testing.T) {
	admin, _ := newAdminFixture(t, "hunter2", "", time.Hour)
	if err := admin.VerifyToken("not-a-jwt"); err == nil {
		t.Fatal("garbage token must not verify")
	}

	expired, _ := newAdminFixture(t, "hunter2", "", -time.Minute)
	token, err := expired.Login("hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if err := expired.VerifyToken(token); err == nil {
		t.Fatal("expired token must not verify")
	}
}

func TestParticipantSessionsNestsRuns(t *testing.T) {
	admin, study := newAdminFixture(t, "hunter2", "", time.Hour)
	ctx := context.Background()

	participant, err := study.EnsureParticipant(ctx, strPtr("ext-admin"), nil, strPtr("Robin"))
	if err != nil {
		t.Fatal(err)
	}
	session, err := study.StartSession(ctx, &participant.ID)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := study.SubmitRun(ctx, SubmitRunInput{
		SessionID:     session.ID,
		ParticipantID: &participant.ID,
		ScenarioID:    "gender-biased-1",
		ChatHistory:   validHistory(),
		Assessment:    types.Assessment{IsBiased: true, Confidence: 4, Reasoning: "Stereotype"},
	}); err != nil {
		t.Fatal(err)
	}

	summaries, err := admin.ListParticipants(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected one participant summary, got %d", len(summaries))
	}

	sessions, err := admin.ParticipantSessions(ctx, participant.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 || len(sessions[0].Runs) != 1 {
		t.Fatalf("expected one session with one run, got %+v", sessions)
	}

	detail := sessions[0].Runs[0]
	if len(detail.ChatHistory) != len(validHistory()) {
		t.Fatalf("chat history not decoded, got %d items", len(detail.ChatHistory))
	}
	if detail.Analysis != nil {
		t.Fatal("analysis must be nil while the job is pending")
	}
	if detail.Scenario == nil || !detail.Scenario.IsBiased || detail.Scenario.SystemPrompt == "" {
		t.Fatalf("admin view must carry the full scenario definition, got %+v", detail.Scenario)
	}
}
