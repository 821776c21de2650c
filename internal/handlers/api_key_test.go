package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/gdg-garage/jobquest-api/internal/auth"
	"github.com/gdg-garage/jobquest-api/internal/models"
)

func TestAPIKeyLifecycle(t *testing.T) {
	db := setupTestDB(t)
	_, authHandler := newTestHandlers(db)
	h := NewAPIKeyHandler(db, authHandler)

	owner := models.User{DiscordID: "1"}
	other := models.User{DiscordID: "2"}
	db.Create(&owner)
	db.Create(&other)
	ctx := auth.WithUserID(context.Background(), owner.ID)

	create := &CreateAPIKeyInput{}
	create.Body.Name = "cv builder"
	created, err := h.HandleCreate(ctx, create)
	if err != nil {
		t.Fatalf("HandleCreate returned error: %v", err)
	}
	if len(created.Body.Key) != apiKeyLength {
		t.Errorf("expected a %d character key, got %q", apiKeyLength, created.Body.Key)
	}

	list, err := h.HandleList(ctx, &ListAPIKeysInput{})
	if err != nil {
		t.Fatalf("HandleList returned error: %v", err)
	}
	if len(list.Body) != 1 {
		t.Fatalf("expected 1 key, got %d", len(list.Body))
	}
	if !strings.HasPrefix(list.Body[0].Key, "...") || strings.Contains(list.Body[0].Key, created.Body.Key) {
		t.Errorf("expected a masked key, got %q", list.Body[0].Key)
	}

	otherList, err := h.HandleList(auth.WithUserID(context.Background(), other.ID), &ListAPIKeysInput{})
	if err != nil {
		t.Fatalf("HandleList returned error: %v", err)
	}
	if len(otherList.Body) != 0 {
		t.Errorf("keys leaked to another user: %v", otherList.Body)
	}

	_, err = h.HandleDelete(auth.WithUserID(context.Background(), other.ID), &DeleteAPIKeyInput{ID: created.Body.ID})
	if statusOf(err) != http.StatusNotFound {
		t.Errorf("expected 404 deleting someone else's key, got %v", err)
	}

	if _, err := h.HandleDelete(ctx, &DeleteAPIKeyInput{ID: created.Body.ID}); err != nil {
		t.Fatalf("HandleDelete returned error: %v", err)
	}
	list, _ = h.HandleList(ctx, &ListAPIKeysInput{})
	if len(list.Body) != 0 {
		t.Errorf("expected no keys after delete, got %d", len(list.Body))
	}
}
