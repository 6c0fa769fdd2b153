package ticket_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/facilitypulse/facilitypulse/internal/ticket"
)

func newTestService() *ticket.Service {
	return ticket.NewService(ticket.ServiceConfig{
		Repository: ticket.NewInMemoryRepository(),
		Logger:     zerolog.Nop(),
	})
}

func TestService_Create(t *testing.T) {
	service := newTestService()
	ctx := context.Background()

	created, err := service.Create(ctx, "loc_main", &ticket.CreateInput{
		Description: "Freezer compressor rattling",
		RequestedBy: "usr_manager1",
	})
	if err != nil {
		t.Fatalf("failed to create ticket: %v", err)
	}

	if !strings.HasPrefix(created.ID, "tkt_") {
		t.Errorf("expected ticket ID to start with 'tkt_', got %q", created.ID)
	}
	if created.Status != ticket.StatusOpen {
		t.Errorf("expected new ticket to be open, got %q", created.Status)
	}
	if created.Priority != ticket.PriorityMedium {
		t.Errorf("expected default priority medium, got %q", created.Priority)
	}
	if created.Type != ticket.TypeCorrective {
		t.Errorf("expected default type corrective, got %q", created.Type)
	}

	got, err := service.Get(ctx, "loc_main", created.ID)
	if err != nil {
		t.Fatalf("failed to get ticket: %v", err)
	}
	if got.Description != "Freezer compressor rattling" {
		t.Errorf("expected description to round-trip, got %q", got.Description)
	}
}

func TestService_Create_ValidationErrors(t *testing.T) {
	service := newTestService()
	ctx := context.Background()

	tests := []struct {
		name  string
		input *ticket.CreateInput
	}{
		{name: "nil input", input: nil},
		{name: "empty description", input: &ticket.CreateInput{Description: ""}},
		{name: "unknown priority", input: &ticket.CreateInput{Description: "X", Priority: "urgent"}},
		{name: "unknown type", input: &ticket.CreateInput{Description: "X", Type: "emergency"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Create(ctx, "loc_main", tt.input)
			if !errors.Is(err, ticket.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestService_AssignAndComplete(t *testing.T) {
	service := newTestService()
	ctx := context.Background()

	created, err := service.Create(ctx, "loc_main", &ticket.CreateInput{
		Description: "Oven door seal worn",
		RequestedBy: "usr_manager1",
		Priority:    ticket.PriorityHigh,
	})
	if err != nil {
		t.Fatalf("failed to create ticket: %v", err)
	}

	visit := time.Now().Add(48 * time.Hour)
	assigned, err := service.Assign(ctx, "loc_main", created.ID, "usr_tech7", &visit)
	if err != nil {
		t.Fatalf("failed to assign ticket: %v", err)
	}
	if assigned.Status != ticket.StatusAssigned {
		t.Errorf("expected status assigned, got %q", assigned.Status)
	}
	if assigned.AssignedTo == nil || *assigned.AssignedTo != "usr_tech7" {
		t.Error("expected technician to be recorded")
	}
	if assigned.VisitAt == nil || !assigned.VisitAt.Equal(visit) {
		t.Error("expected visit date to be recorded")
	}

	notes := "Replaced door gasket"
	now := time.Now()
	completed, err := service.Complete(ctx, "loc_main", created.ID, &notes, now)
	if err != nil {
		t.Fatalf("failed to complete ticket: %v", err)
	}
	if completed.Status != ticket.StatusCompleted {
		t.Errorf("expected status completed, got %q", completed.Status)
	}
	if completed.CompletedAt == nil || !completed.CompletedAt.Equal(now) {
		t.Error("expected completion timestamp to be recorded")
	}
	if completed.TechnicianNotes == nil || *completed.TechnicianNotes != notes {
		t.Error("expected technician notes to be recorded")
	}
}

func TestService_Complete_Idempotent(t *testing.T) {
	service := newTestService()
	ctx := context.Background()

	created, err := service.Create(ctx, "loc_main", &ticket.CreateInput{
		Description: "Inspect extraction hood",
		Type:        ticket.TypeInspection,
	})
	if err != nil {
		t.Fatalf("failed to create ticket: %v", err)
	}

	now := time.Now()
	if _, err := service.Complete(ctx, "loc_main", created.ID, nil, now); err != nil {
		t.Fatalf("first complete failed: %v", err)
	}

	again, err := service.Complete(ctx, "loc_main", created.ID, nil, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("second complete should be a no-op, got %v", err)
	}
	if !again.CompletedAt.Equal(now) {
		t.Error("expected completion timestamp to be unchanged")
	}
}

func TestService_ClosedTicketRejectsChanges(t *testing.T) {
	service := newTestService()
	ctx := context.Background()

	created, err := service.Create(ctx, "loc_main", &ticket.CreateInput{
		Description: "Old request",
	})
	if err != nil {
		t.Fatalf("failed to create ticket: %v", err)
	}

	cancelled := ticket.StatusCancelled
	if _, err := service.Update(ctx, "loc_main", created.ID, &ticket.UpdateInput{Status: &cancelled}); err != nil {
		t.Fatalf("failed to cancel ticket: %v", err)
	}

	if _, err := service.Assign(ctx, "loc_main", created.ID, "usr_tech7", nil); !errors.Is(err, ticket.ErrTicketClosed) {
		t.Errorf("expected ErrTicketClosed on assign, got %v", err)
	}
	if _, err := service.Complete(ctx, "loc_main", created.ID, nil, time.Now()); !errors.Is(err, ticket.ErrTicketClosed) {
		t.Errorf("expected ErrTicketClosed on complete, got %v", err)
	}
	desc := "edited"
	if _, err := service.Update(ctx, "loc_main", created.ID, &ticket.UpdateInput{Description: &desc}); !errors.Is(err, ticket.ErrTicketClosed) {
		t.Errorf("expected ErrTicketClosed on update, got %v", err)
	}
}

func TestService_ListAndCountOpen(t *testing.T) {
	service := newTestService()
	ctx := context.Background()

	for i, desc := range []string{"first", "second", "third"} {
		created, err := service.Create(ctx, "loc_main", &ticket.CreateInput{Description: desc})
		if err != nil {
			t.Fatalf("failed to create ticket %d: %v", i, err)
		}
		if i == 0 {
			if _, err := service.Complete(ctx, "loc_main", created.ID, nil, time.Now()); err != nil {
				t.Fatalf("failed to complete ticket: %v", err)
			}
		}
	}
	if _, err := service.Create(ctx, "loc_other", &ticket.CreateInput{Description: "elsewhere"}); err != nil {
		t.Fatalf("failed to create ticket: %v", err)
	}

	all, err := service.List(ctx, "loc_main", ticket.ListOptions{})
	if err != nil {
		t.Fatalf("failed to list tickets: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 tickets at loc_main, got %d", len(all))
	}

	open, err := service.List(ctx, "loc_main", ticket.ListOptions{Status: ticket.StatusOpen})
	if err != nil {
		t.Fatalf("failed to list open tickets: %v", err)
	}
	if len(open) != 2 {
		t.Errorf("expected 2 open tickets, got %d", len(open))
	}

	count, err := service.CountOpen(ctx, "loc_main")
	if err != nil {
		t.Fatalf("failed to count open tickets: %v", err)
	}
	if count != 2 {
		t.Errorf("expected open count 2, got %d", count)
	}
}
