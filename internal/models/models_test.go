package models

import (
	"testing"
	"time"
)

func TestBaseModelBeforeCreateGeneratesID(t *testing.T) {
	var base BaseModel
	if err := base.BeforeCreate(nil); err != nil {
		t.Fatalf("before create: %v", err)
	}
	if base.ID == "" {
		t.Fatal("expected base model ID to be generated")
	}
}

func TestEmbeddedModelsUseBaseBeforeCreate(t *testing.T) {
	cases := []struct {
		name  string
		model func() *BaseModel
	}{
		{"product", func() *BaseModel {
			p := &Product{}
			return &p.BaseModel
		}},
		{"order", func() *BaseModel {
			o := &Order{}
			return &o.BaseModel
		}},
		{"order_item", func() *BaseModel {
			i := &OrderItem{}
			return &i.BaseModel
		}},
		{"password_reset_code", func() *BaseModel {
			c := &PasswordResetCode{}
			return &c.BaseModel
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			model := tc.model()
			if err := model.BeforeCreate(nil); err != nil {
				t.Fatalf("before create: %v", err)
			}
			if model.ID == "" {
				t.Fatal("expected ID to be generated")
			}
		})
	}
}

func TestUserBeforeCreateGeneratesID(t *testing.T) {
	u := &User{}
	if err := u.BeforeCreate(nil); err != nil {
		t.Fatalf("before create: %v", err)
	}
	if u.ID == "" {
		t.Fatal("expected user ID to be generated")
	}
}

func TestSessionBeforeCreateGeneratesID(t *testing.T) {
	s := &Session{}
	if err := s.BeforeCreate(nil); err != nil {
		t.Fatalf("before create: %v", err)
	}
	if s.ID == "" {
		t.Fatal("expected session ID to be generated")
	}
}

func TestPasswordResetCodeValidity(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	code := &PasswordResetCode{ExpiresAt: now.Add(time.Hour)}

	if !code.Valid(now) {
		t.Fatal("expected code to be valid before expiry")
	}
	if code.Valid(now.Add(time.Hour)) {
		t.Fatal("expected code to be invalid at expiry instant")
	}
	if code.Valid(now.Add(2 * time.Hour)) {
		t.Fatal("expected code to be invalid after expiry")
	}
}
