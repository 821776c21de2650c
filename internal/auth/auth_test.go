package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gdg-garage/jobquest-api/internal/config"
	"github.com/gdg-garage/jobquest-api/internal/database"
	"github.com/gdg-garage/jobquest-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestHandleMe(t *testing.T) {
	db := setupTestDB(t)

	user := models.User{
		DiscordID: "123456",
		Username:  "testuser",
		Email:     "test@example.com",
		Avatar:    "avatar_url",
		XP:        250,
	}
	db.Create(&user)

	cfg := &config.Config{JWTSecret: "test-secret"}
	handler := NewAuthHandler(cfg, db)

	t.Run("Authenticated", func(t *testing.T) {
		token, _ := handler.GenerateToken(user.ID)
		input := &AuthInput{
			Cookie: "theme=dark; auth_token=" + token,
		}
		resp, err := handler.HandleMe(context.Background(), input)
		if err != nil {
			t.Fatalf("HandleMe returned error: %v", err)
		}

		if resp.Body.Username != user.Username {
			t.Errorf("expected username %s, got %s", user.Username, resp.Body.Username)
		}
		if resp.Body.Email != user.Email {
			t.Errorf("expected email %s, got %s", user.Email, resp.Body.Email)
		}
		if resp.Body.XP != 250 || resp.Body.Level != 1 {
			t.Errorf("expected xp 250 level 1, got xp %d level %d", resp.Body.XP, resp.Body.Level)
		}
	})

	t.Run("BoundByMiddleware", func(t *testing.T) {
		resp, err := handler.HandleMe(WithUserID(context.Background(), user.ID), &AuthInput{})
		if err != nil {
			t.Fatalf("HandleMe returned error: %v", err)
		}
		if resp.Body.ID != user.ID {
			t.Errorf("expected user %d, got %d", user.ID, resp.Body.ID)
		}
	})

	t.Run("APIKey", func(t *testing.T) {
		db.Create(&models.APIKey{UserID: user.ID, Key: "integration-key", Name: "importer"})
		resp, err := handler.HandleMe(context.Background(), &AuthInput{APIKey: "integration-key"})
		if err != nil {
			t.Fatalf("HandleMe returned error: %v", err)
		}
		if resp.Body.ID != user.ID {
			t.Errorf("expected user %d, got %d", user.ID, resp.Body.ID)
		}
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		input := &AuthInput{}
		_, err := handler.HandleMe(context.Background(), input)
		if err == nil {
			t.Fatal("expected error for unauthenticated request, got nil")
		}
	})

	t.Run("ForgedToken", func(t *testing.T) {
		other := NewAuthHandler(&config.Config{JWTSecret: "other-secret"}, db)
		token, _ := other.GenerateToken(user.ID)
		_, err := handler.HandleMe(context.Background(), &AuthInput{Cookie: "auth_token=" + token})
		if err == nil {
			t.Fatal("expected error for a token signed with another secret")
		}
	})
}

func TestUpsertDiscordUser(t *testing.T) {
	db := setupTestDB(t)
	handler := NewAuthHandler(&config.Config{JWTSecret: "test-secret"}, db)
	ctx := context.Background()

	created, err := handler.UpsertDiscordUser(ctx, "42", "ada", "ada@example.com", "a1")
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	db.Model(&models.User{}).Where("id = ?", created.ID).Updates(map[string]any{"xp": 600, "level": 3})

	updated, err := handler.UpsertDiscordUser(ctx, "42", "ada_l", "ada@example.com", "a2")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if updated.ID != created.ID {
		t.Fatalf("expected the same user, got %d and %d", created.ID, updated.ID)
	}

	var stored models.User
	db.First(&stored, created.ID)
	if stored.Username != "ada_l" || stored.Avatar != "a2" {
		t.Errorf("identity not refreshed: %+v", stored)
	}
	if stored.XP != 600 || stored.Level != 3 {
		t.Errorf("login must not touch progress, got xp %d level %d", stored.XP, stored.Level)
	}
}

func TestDiscordLoginFlow(t *testing.T) {
	db := setupTestDB(t)

	discord := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/token":
			json.NewEncoder(w).Encode(map[string]any{"access_token": "discord-token", "token_type": "Bearer", "expires_in": 3600})
		case "/users/@me":
			if r.Header.Get("Authorization") != "Bearer discord-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(map[string]string{"id": "777", "username": "grace", "email": "grace@example.com"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer discord.Close()

	cfg := &config.Config{JWTSecret: "test-secret", DiscordClientID: "client", DiscordRedirectURL: "http://localhost/cb"}
	handler := NewAuthHandler(cfg, db)
	handler.oauthConfig.Endpoint.TokenURL = discord.URL + "/token"
	handler.userAPI = discord.URL + "/users/@me"

	rr := httptest.NewRecorder()
	handler.HandleLogin(rr, httptest.NewRequest(http.MethodGet, "/auth/discord/login", nil))
	if rr.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected redirect, got %d", rr.Code)
	}
	loc, err := url.Parse(rr.Header().Get("Location"))
	if err != nil {
		t.Fatalf("bad redirect: %v", err)
	}
	state := loc.Query().Get("state")
	if state == "" {
		t.Fatal("expected a state parameter")
	}

	t.Run("StateMismatch", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/discord/callback?code=abc&state=forged", nil)
		req.AddCookie(&http.Cookie{Name: stateCookieName, Value: state})
		rr := httptest.NewRecorder()
		handler.HandleCallback(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("Success", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/discord/callback?code=abc&state="+state, nil)
		req.AddCookie(&http.Cookie{Name: stateCookieName, Value: state})
		rr := httptest.NewRecorder()
		handler.HandleCallback(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
		if !strings.Contains(rr.Body.String(), "grace") {
			t.Errorf("unexpected body %q", rr.Body.String())
		}

		var tokenCookie *http.Cookie
		for _, c := range rr.Result().Cookies() {
			if c.Name == TokenCookieName {
				tokenCookie = c
			}
		}
		if tokenCookie == nil {
			t.Fatal("expected auth_token cookie")
		}

		var user models.User
		if err := db.Where("discord_id = ?", "777").First(&user).Error; err != nil {
			t.Fatalf("user not created: %v", err)
		}
		id, _, err := handler.userFromToken(tokenCookie.Value)
		if err != nil || id != user.ID {
			t.Errorf("token resolves to %d (err=%v), want %d", id, err, user.ID)
		}
	})
}
