package deletion_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/peopleregistry/peopleregistry/internal/audit"
	"github.com/peopleregistry/peopleregistry/internal/deletion"
	"github.com/peopleregistry/peopleregistry/internal/person"
	"github.com/peopleregistry/peopleregistry/internal/project"
	"github.com/peopleregistry/peopleregistry/internal/subscription"
)

type env struct {
	service  *deletion.Service
	people   *person.InMemoryRepository
	subs     *subscription.InMemoryRepository
	projects *project.InMemoryRepository
	tokens   *deletion.InMemoryTokenStore
	audit    *audit.MemorySink
	notifier *fakeNotifier
}

type fakeNotifier struct {
	mu    sync.Mutex
	sent  []string
	fails bool
}

func (n *fakeNotifier) SendDeletionConfirmed(_ context.Context, email, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fails {
		return errors.New("mail provider down")
	}
	n.sent = append(n.sent, email)
	return nil
}

func newEnv(t *testing.T) *env {
	t.Helper()

	e := &env{
		people:   person.NewInMemoryRepository(),
		subs:     subscription.NewInMemoryRepository(),
		projects: project.NewInMemoryRepository(),
		tokens:   deletion.NewInMemoryTokenStore(),
		audit:    audit.NewMemorySink(),
		notifier: &fakeNotifier{},
	}
	e.service = deletion.NewService(deletion.Config{
		People:   e.people,
		Subs:     e.subs,
		Projects: e.projects,
		Tokens:   e.tokens,
		Audit:    e.audit,
		Notifier: e.notifier,
		Logger:   zerolog.Nop(),
	})
	return e
}

func (e *env) addPerson(t *testing.T, id string) {
	t.Helper()
	now := time.Now()
	err := e.people.Create(context.Background(), &person.Person{
		ID:        id,
		FirstName: "Test",
		LastName:  "Person",
		Email:     id + "@example.com",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("failed to seed person: %v", err)
	}
}

func (e *env) addSubscription(t *testing.T, id, personID, projectID string, status subscription.Status) {
	t.Helper()
	now := time.Now()
	err := e.subs.Create(context.Background(), &subscription.Subscription{
		ID:        id,
		PersonID:  personID,
		ProjectID: projectID,
		Status:    status,
		IsActive:  status.Blocking(),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("failed to seed subscription: %v", err)
	}
}

func (e *env) addProject(t *testing.T, id, name string) {
	t.Helper()
	now := time.Now()
	err := e.projects.Create(context.Background(), &project.Project{
		ID:        id,
		Name:      name,
		Status:    project.StatusActive,
		IsEnabled: true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("failed to seed project: %v", err)
	}
}

var actor = deletion.Actor{ID: "per_actor000000000000000", IP: "203.0.113.10", UserAgent: "test-agent"}

func TestInitiateAndConfirm(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.addPerson(t, "per_e1")

	result, err := e.service.Initiate(ctx, "per_e1", actor, nil)
	if err != nil {
		t.Fatalf("failed to initiate: %v", err)
	}
	if result.Token == "" {
		t.Fatal("expected a confirmation token")
	}
	if result.BlockingRecordsFound != 0 {
		t.Errorf("expected no blocking records, got %d", result.BlockingRecordsFound)
	}
	ttl := time.Until(result.ExpiresAt)
	if ttl < 14*time.Minute || ttl > 16*time.Minute {
		t.Errorf("expected expiry roughly 15 minutes out, got %s", ttl)
	}

	if err := e.service.Confirm(ctx, "per_e1", result.Token, actor, nil); err != nil {
		t.Fatalf("failed to confirm: %v", err)
	}

	if _, err := e.people.Get(ctx, "per_e1"); !errors.Is(err, person.ErrPersonNotFound) {
		t.Errorf("expected person to be deleted, got %v", err)
	}

	// Token is single-use: a replayed confirm is rejected as an
	// invalid token, not as a missing person.
	err = e.service.Confirm(ctx, "per_e1", result.Token, actor, nil)
	if !errors.Is(err, deletion.ErrInvalidOrExpiredToken) {
		t.Errorf("expected ErrInvalidOrExpiredToken on replay, got %v", err)
	}

	if got := e.notifier.sent; len(got) != 1 || got[0] != "per_e1@example.com" {
		t.Errorf("expected one deletion notification, got %v", got)
	}
	if events := e.audit.EventsOfType(audit.EventDeletionConfirmed); len(events) != 1 {
		t.Errorf("expected one confirmed audit event, got %d", len(events))
	}
}

func TestInitiate_PersonNotFound(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.service.Initiate(ctx, "per_missing", actor, nil)
	if !errors.Is(err, person.ErrPersonNotFound) {
		t.Errorf("expected ErrPersonNotFound, got %v", err)
	}
}

func TestInitiate_BlockedByActiveSubscription(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.addPerson(t, "per_e2")
	e.addProject(t, "prj_garden", "Community Garden")
	e.addSubscription(t, "sub_1", "per_e2", "prj_garden", subscription.StatusActive)

	_, err := e.service.Initiate(ctx, "per_e2", actor, nil)

	var integrityErr *deletion.IntegrityError
	if !errors.As(err, &integrityErr) {
		t.Fatalf("expected IntegrityError, got %T: %v", err, err)
	}
	if len(integrityErr.RelatedRecords) != 1 {
		t.Fatalf("expected 1 blocking record, got %d", len(integrityErr.RelatedRecords))
	}

	record := integrityErr.RelatedRecords[0]
	if record.ID != "sub_1" || record.ParentID != "prj_garden" || record.Status != "active" {
		t.Errorf("unexpected blocking record: %+v", record)
	}
	if record.ParentName == nil || *record.ParentName != "Community Garden" {
		t.Errorf("expected parent name to be resolved, got %v", record.ParentName)
	}

	if events := e.audit.EventsOfType(audit.EventDeletionBlocked); len(events) != 1 {
		t.Errorf("expected one blocked audit event, got %d", len(events))
	}
}

func TestInitiate_PendingBlocksCancelledDoesNot(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.addPerson(t, "per_e3")
	e.addProject(t, "prj_a", "Project A")
	e.addProject(t, "prj_b", "Project B")
	e.addSubscription(t, "sub_pending", "per_e3", "prj_a", subscription.StatusPending)
	e.addSubscription(t, "sub_cancelled", "per_e3", "prj_b", subscription.StatusCancelled)

	_, err := e.service.Initiate(ctx, "per_e3", actor, nil)

	var integrityErr *deletion.IntegrityError
	if !errors.As(err, &integrityErr) {
		t.Fatalf("expected IntegrityError, got %T: %v", err, err)
	}
	if len(integrityErr.RelatedRecords) != 1 {
		t.Fatalf("expected only the pending subscription to block, got %d records", len(integrityErr.RelatedRecords))
	}
	if integrityErr.RelatedRecords[0].ID != "sub_pending" {
		t.Errorf("expected sub_pending to block, got %q", integrityErr.RelatedRecords[0].ID)
	}
}

func TestInitiateAndConfirm_OnlyInactiveDependents(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.addPerson(t, "per_e3")
	e.addProject(t, "prj_a", "Project A")
	e.addSubscription(t, "sub_done", "per_e3", "prj_a", subscription.StatusCancelled)

	result, err := e.service.Initiate(ctx, "per_e3", actor, nil)
	if err != nil {
		t.Fatalf("expected initiate to succeed with only cancelled dependents, got %v", err)
	}
	if err := e.service.Confirm(ctx, "per_e3", result.Token, actor, nil); err != nil {
		t.Fatalf("expected confirm to succeed, got %v", err)
	}
}

func TestInitiate_ReplacesPriorToken(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.addPerson(t, "per_e1")

	first, err := e.service.Initiate(ctx, "per_e1", actor, nil)
	if err != nil {
		t.Fatalf("failed to initiate: %v", err)
	}
	second, err := e.service.Initiate(ctx, "per_e1", actor, nil)
	if err != nil {
		t.Fatalf("failed to re-initiate: %v", err)
	}

	err = e.service.Confirm(ctx, "per_e1", first.Token, actor, nil)
	if !errors.Is(err, deletion.ErrInvalidOrExpiredToken) {
		t.Errorf("expected replaced token to be rejected, got %v", err)
	}
	if err := e.service.Confirm(ctx, "per_e1", second.Token, actor, nil); err != nil {
		t.Errorf("expected current token to succeed, got %v", err)
	}
}

func TestConfirm_ExpiredToken(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.addPerson(t, "per_e3")

	// Store a matching token that is already past expiry.
	now := time.Now()
	value, err := deletion.GenerateTokenValue()
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	err = e.tokens.Put(ctx, &deletion.Token{
		Value:       value,
		PersonID:    "per_e3",
		RequestedBy: actor.ID,
		IssuedAt:    now.Add(-20 * time.Minute),
		ExpiresAt:   now.Add(-5 * time.Minute),
	})
	if err != nil {
		t.Fatalf("failed to put token: %v", err)
	}

	err = e.service.Confirm(ctx, "per_e3", value, actor, nil)
	if !errors.Is(err, deletion.ErrInvalidOrExpiredToken) {
		t.Errorf("expected ErrInvalidOrExpiredToken, got %v", err)
	}
}

func TestConfirm_TokenForDifferentPerson(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.addPerson(t, "per_a")
	e.addPerson(t, "per_b")

	result, err := e.service.Initiate(ctx, "per_a", actor, nil)
	if err != nil {
		t.Fatalf("failed to initiate: %v", err)
	}

	err = e.service.Confirm(ctx, "per_b", result.Token, actor, nil)
	if !errors.Is(err, deletion.ErrInvalidOrExpiredToken) {
		t.Errorf("expected mismatched token to read as invalid, got %v", err)
	}

	if _, err := e.people.Get(ctx, "per_b"); err != nil {
		t.Errorf("expected per_b to survive, got %v", err)
	}
}

func TestConfirm_UnknownPersonNotFound(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.addPerson(t, "per_a")

	result, err := e.service.Initiate(ctx, "per_a", actor, nil)
	if err != nil {
		t.Fatalf("failed to initiate: %v", err)
	}

	// A person that never existed is still reported as not found,
	// even when the presented token belongs to someone else.
	err = e.service.Confirm(ctx, "per_never", result.Token, actor, nil)
	if !errors.Is(err, person.ErrPersonNotFound) {
		t.Errorf("expected ErrPersonNotFound, got %v", err)
	}
}

func TestConfirm_DifferentActorForbidden(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.addPerson(t, "per_e4")

	result, err := e.service.Initiate(ctx, "per_e4", actor, nil)
	if err != nil {
		t.Fatalf("failed to initiate: %v", err)
	}

	other := deletion.Actor{ID: "per_other000000000000000"}
	err = e.service.Confirm(ctx, "per_e4", result.Token, other, nil)
	if !errors.Is(err, deletion.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	// The failed attempt must not consume the token or delete the person.
	if _, err := e.people.Get(ctx, "per_e4"); err != nil {
		t.Fatalf("expected person to survive foreign confirm, got %v", err)
	}
	if err := e.service.Confirm(ctx, "per_e4", result.Token, actor, nil); err != nil {
		t.Errorf("expected original actor to still confirm, got %v", err)
	}
}

func TestConfirm_IntegrityViolationLeavesTokenAlive(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.addPerson(t, "per_e5")
	e.addProject(t, "prj_a", "Project A")

	result, err := e.service.Initiate(ctx, "per_e5", actor, nil)
	if err != nil {
		t.Fatalf("failed to initiate: %v", err)
	}

	// A subscription becomes active between initiate and confirm.
	e.addSubscription(t, "sub_late", "per_e5", "prj_a", subscription.StatusActive)

	err = e.service.Confirm(ctx, "per_e5", result.Token, actor, nil)
	var integrityErr *deletion.IntegrityError
	if !errors.As(err, &integrityErr) {
		t.Fatalf("expected IntegrityError, got %T: %v", err, err)
	}

	// Resolving the blocker lets the same token confirm before expiry.
	if err := e.subs.Delete(ctx, "sub_late"); err != nil {
		t.Fatalf("failed to remove subscription: %v", err)
	}
	if err := e.service.Confirm(ctx, "per_e5", result.Token, actor, nil); err != nil {
		t.Errorf("expected retry with same token to succeed, got %v", err)
	}
}

func TestConfirm_FailedDeleteReleasesToken(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.addPerson(t, "per_e6")

	flaky := &flakyDirectory{PersonDirectory: e.people, failures: 1}
	service := deletion.NewService(deletion.Config{
		People:   flaky,
		Subs:     e.subs,
		Projects: e.projects,
		Tokens:   e.tokens,
		Audit:    e.audit,
		Logger:   zerolog.Nop(),
	})

	result, err := service.Initiate(ctx, "per_e6", actor, nil)
	if err != nil {
		t.Fatalf("failed to initiate: %v", err)
	}

	if err := service.Confirm(ctx, "per_e6", result.Token, actor, nil); err == nil {
		t.Fatal("expected first confirm to fail")
	}

	// The token must survive the failed delete.
	if err := service.Confirm(ctx, "per_e6", result.Token, actor, nil); err != nil {
		t.Errorf("expected retry to succeed after transient failure, got %v", err)
	}
}

type flakyDirectory struct {
	deletion.PersonDirectory
	mu       sync.Mutex
	failures int
}

func (d *flakyDirectory) Delete(ctx context.Context, id string) error {
	d.mu.Lock()
	if d.failures > 0 {
		d.failures--
		d.mu.Unlock()
		return errors.New("store unavailable")
	}
	d.mu.Unlock()
	return d.PersonDirectory.Delete(ctx, id)
}

func TestConfirm_ConcurrentConfirmsSingleWinner(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.addPerson(t, "per_race")

	result, err := e.service.Initiate(ctx, "per_race", actor, nil)
	if err != nil {
		t.Fatalf("failed to initiate: %v", err)
	}

	const racers = 8
	var wg sync.WaitGroup
	outcomes := make(chan error, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes <- e.service.Confirm(ctx, "per_race", result.Token, actor, nil)
		}()
	}
	wg.Wait()
	close(outcomes)

	successes := 0
	for err := range outcomes {
		if err == nil {
			successes++
			continue
		}
		if !errors.Is(err, deletion.ErrInvalidOrExpiredToken) && !errors.Is(err, person.ErrPersonNotFound) {
			t.Errorf("unexpected racing confirm error: %v", err)
		}
	}
	if successes != 1 {
		t.Errorf("expected exactly one successful confirm, got %d", successes)
	}

	if _, err := e.people.Get(ctx, "per_race"); !errors.Is(err, person.ErrPersonNotFound) {
		t.Errorf("expected person to be deleted, got %v", err)
	}
}

func TestConfirm_NotifierFailureDoesNotFailConfirm(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.addPerson(t, "per_e7")
	e.notifier.fails = true

	result, err := e.service.Initiate(ctx, "per_e7", actor, nil)
	if err != nil {
		t.Fatalf("failed to initiate: %v", err)
	}
	if err := e.service.Confirm(ctx, "per_e7", result.Token, actor, nil); err != nil {
		t.Errorf("expected confirm to succeed despite notifier failure, got %v", err)
	}
}

func TestInitiate_ReasonFlowsToAudit(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.addPerson(t, "per_e8")

	reason := "user requested account removal"
	if _, err := e.service.Initiate(ctx, "per_e8", actor, &reason); err != nil {
		t.Fatalf("failed to initiate: %v", err)
	}

	events := e.audit.EventsOfType(audit.EventDeletionInitiated)
	if len(events) != 1 {
		t.Fatalf("expected one initiated audit event, got %d", len(events))
	}
	got, _ := events[0].Details["reason"].(string)
	if !strings.Contains(got, "account removal") {
		t.Errorf("expected reason in audit details, got %q", got)
	}
	if events[0].IP != actor.IP || events[0].UserAgent != actor.UserAgent {
		t.Errorf("expected request metadata on audit event, got %+v", events[0])
	}
}
