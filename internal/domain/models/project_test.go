package models

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func intPtr(n int) *int { return &n }

func TestInviteIsValid(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		inv  Invite
		want bool
	}{
		{"active unlimited", Invite{IsActive: true, ExpiresAt: now.Add(time.Hour)}, true},
		{"inactive", Invite{IsActive: false, ExpiresAt: now.Add(time.Hour)}, false},
		{"expired", Invite{IsActive: true, ExpiresAt: now.Add(-time.Minute)}, false},
		{"expires exactly now", Invite{IsActive: true, ExpiresAt: now}, false},
		{"uses remaining", Invite{IsActive: true, ExpiresAt: now.Add(time.Hour), MaxUses: intPtr(5), UsedCount: 4}, true},
		{"uses exhausted", Invite{IsActive: true, ExpiresAt: now.Add(time.Hour), MaxUses: intPtr(5), UsedCount: 5}, false},
		{"over budget", Invite{IsActive: true, ExpiresAt: now.Add(time.Hour), MaxUses: intPtr(1), UsedCount: 2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.inv.IsValid(now); got != tt.want {
				t.Errorf("IsValid = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInviteExhausted(t *testing.T) {
	if (Invite{UsedCount: 100}).Exhausted() {
		t.Error("unlimited invite reported exhausted")
	}
	if !(Invite{MaxUses: intPtr(2), UsedCount: 2}).Exhausted() {
		t.Error("spent invite not reported exhausted")
	}
}

func TestMemberFor(t *testing.T) {
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	p := Project{Members: []Member{
		{UserID: alice, Role: RoleOwner},
		{UserID: bob, Role: RoleViewer},
	}}

	m, ok := p.MemberFor(bob)
	if !ok || m.Role != RoleViewer {
		t.Errorf("MemberFor(bob) = %+v, %v", m, ok)
	}
	if _, ok := p.MemberFor(primitive.NewObjectID()); ok {
		t.Error("found membership for a stranger")
	}
}

func TestInviteByCode(t *testing.T) {
	p := Project{Invites: []Invite{{Code: "AAAA1111"}, {Code: "BBBB2222"}}}
	if inv, ok := p.InviteByCode("BBBB2222"); !ok || inv.Code != "BBBB2222" {
		t.Errorf("InviteByCode = %+v, %v", inv, ok)
	}
	if _, ok := p.InviteByCode("missing"); ok {
		t.Error("found invite for unknown code")
	}
}

func TestOwnerCount(t *testing.T) {
	p := Project{Members: []Member{
		{UserID: primitive.NewObjectID(), Role: RoleOwner},
		{UserID: primitive.NewObjectID(), Role: RoleAdmin},
	}}
	if n := p.OwnerCount(); n != 1 {
		t.Errorf("OwnerCount = %d, want 1", n)
	}
}

func TestTemplateColumns(t *testing.T) {
	tests := []struct {
		template string
		first    string
		count    int
	}{
		{"kanban", "To Do", 3},
		{"scrum", "Backlog", 5},
		{"simple", "To Do", 2},
		{"unknown", "To Do", 3}, // falls back to kanban
	}
	for _, tt := range tests {
		cols := TemplateColumns(tt.template)
		if len(cols) != tt.count || cols[0] != tt.first {
			t.Errorf("TemplateColumns(%q) = %v", tt.template, cols)
		}
	}
}

func TestValidators(t *testing.T) {
	if !ValidProjectStatus(ProjectArchived) || ValidProjectStatus("paused") {
		t.Error("ValidProjectStatus misclassified")
	}
	if !ValidRole(RoleViewer) || ValidRole("superuser") {
		t.Error("ValidRole misclassified")
	}
	if !ValidPriority(PriorityCritical) || ValidPriority("urgent") {
		t.Error("ValidPriority misclassified")
	}
}
