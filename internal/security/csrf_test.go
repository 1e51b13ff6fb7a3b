package security

import "testing"

func TestCSRFTokenRoundTrip(t *testing.T) {
	g := NewCSRFGenerator("test-secret")

	token, err := g.GenerateToken("session-123")
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	if !g.ValidateToken("session-123", token) {
		t.Error("expected token to validate for its session")
	}
}

func TestCSRFTokenIsDeterministic(t *testing.T) {
	g := NewCSRFGenerator("test-secret")

	first, _ := g.GenerateToken("session-123")
	second, _ := g.GenerateToken("session-123")
	if first != second {
		t.Error("expected same token for same session and secret")
	}
}

func TestCSRFTokenRejections(t *testing.T) {
	g := NewCSRFGenerator("test-secret")
	token, _ := g.GenerateToken("session-123")

	tests := []struct {
		name      string
		sessionID string
		token     string
	}{
		{name: "wrong session", sessionID: "session-456", token: token},
		{name: "empty token", sessionID: "session-123", token: ""},
		{name: "empty session", sessionID: "", token: token},
		{name: "tampered token", sessionID: "session-123", token: token + "00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if g.ValidateToken(tt.sessionID, tt.token) {
				t.Error("expected validation to fail")
			}
		})
	}
}

func TestCSRFTokenDependsOnSecret(t *testing.T) {
	tokenA, _ := NewCSRFGenerator("secret-a").GenerateToken("session-123")
	if NewCSRFGenerator("secret-b").ValidateToken("session-123", tokenA) {
		t.Error("expected token from a different secret to be rejected")
	}
}

func TestGenerateTokenRequiresSession(t *testing.T) {
	g := NewCSRFGenerator("test-secret")
	if _, err := g.GenerateToken(""); err == nil {
		t.Error("expected error for empty session ID")
	}
}
