package models

import (
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestInitStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	task := Task{}
	task.InitStatus(now)
	if task.Status != StatusNotStarted || task.CompletedAt != nil {
		t.Fatalf("default task = %q/%v, want Not Started/nil", task.Status, task.CompletedAt)
	}

	done := Task{Status: StatusCompleted}
	done.InitStatus(now)
	if done.CompletedAt == nil || !done.CompletedAt.Equal(now) {
		t.Fatalf("completed task CompletedAt = %v, want %v", done.CompletedAt, now)
	}
}

func TestApplyUpdateStatusRules(t *testing.T) {
	earlier := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	now := earlier.Add(3 * time.Hour)

	tests := []struct {
		name          string
		prevStatus    TaskStatus
		prevCompleted *time.Time
		req           TaskUpdateRequest
		wantStatus    TaskStatus
		wantCompleted *time.Time
	}{
		{
			name:          "enter completed",
			prevStatus:    StatusInProgress,
			req:           TaskUpdateRequest{Status: strPtr("Completed")},
			wantStatus:    StatusCompleted,
			wantCompleted: &now,
		},
		{
			name:          "leave completed",
			prevStatus:    StatusCompleted,
			prevCompleted: &earlier,
			req:           TaskUpdateRequest{Status: strPtr("In Progress")},
			wantStatus:    StatusInProgress,
		},
		{
			name:          "completed again keeps original timestamp",
			prevStatus:    StatusCompleted,
			prevCompleted: &earlier,
			req:           TaskUpdateRequest{Status: strPtr("Completed")},
			wantStatus:    StatusCompleted,
			wantCompleted: &earlier,
		},
		{
			name:          "no status leaves completedAt untouched",
			prevStatus:    StatusCompleted,
			prevCompleted: &earlier,
			req:           TaskUpdateRequest{Title: strPtr("renamed")},
			wantStatus:    StatusCompleted,
			wantCompleted: &earlier,
		},
		{
			name:       "between open states",
			prevStatus: StatusNotStarted,
			req:        TaskUpdateRequest{Status: strPtr("In Progress")},
			wantStatus: StatusInProgress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := Task{Title: "T", Status: tt.prevStatus, CompletedAt: tt.prevCompleted}
			task.ApplyUpdate(tt.req, now)

			if task.Status != tt.wantStatus {
				t.Fatalf("Status = %q, want %q", task.Status, tt.wantStatus)
			}
			switch {
			case tt.wantCompleted == nil && task.CompletedAt != nil:
				t.Fatalf("CompletedAt = %v, want nil", task.CompletedAt)
			case tt.wantCompleted != nil && (task.CompletedAt == nil || !task.CompletedAt.Equal(*tt.wantCompleted)):
				t.Fatalf("CompletedAt = %v, want %v", task.CompletedAt, tt.wantCompleted)
			}
			if (task.CompletedAt != nil) != (task.Status == StatusCompleted) {
				t.Fatalf("completedAt/status invariant broken: %q %v", task.Status, task.CompletedAt)
			}
		})
	}
}

func TestApplyUpdateFields(t *testing.T) {
	task := Task{Title: "old", Description: "old desc", Status: StatusNotStarted}
	task.ApplyUpdate(TaskUpdateRequest{Description: strPtr("new desc")}, time.Now())
	if task.Title != "old" || task.Description != "new desc" {
		t.Fatalf("got %q/%q", task.Title, task.Description)
	}
}

func TestTaskStatusValid(t *testing.T) {
	for _, s := range []TaskStatus{StatusNotStarted, StatusInProgress, StatusCompleted} {
		if !s.Valid() {
			t.Fatalf("%q should be valid", s)
		}
	}
	if TaskStatus("Done").Valid() {
		t.Fatal("Done should be invalid")
	}
}
