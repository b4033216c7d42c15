package services

import (
	"reflect"
	"testing"
)

func TestResolveRecipients(t *testing.T) {
	admins := []string{"admin-1", "admin-2"}

	tests := []struct {
		name      string
		kind      string
		actorRole string
		actorID   string
		assignees []string
		attachees []string
		admins    []string
		want      []string
	}{
		{
			name:      "employee progress update notifies admins",
			kind:      EventProgressUpdated,
			actorRole: "employee",
			actorID:   "emp-1",
			assignees: []string{"emp-1"},
			admins:    admins,
			want:      []string{"admin-1", "admin-2"},
		},
		{
			name:      "admin progress update notifies assignees",
			kind:      EventProgressUpdated,
			actorRole: "admin",
			actorID:   "admin-1",
			assignees: []string{"emp-1", "emp-2"},
			admins:    admins,
			want:      []string{"emp-1", "emp-2"},
		},
		{
			name:      "progress update never expands to attachees",
			kind:      EventProgressUpdated,
			actorRole: "admin",
			actorID:   "admin-1",
			assignees: []string{"emp-1"},
			attachees: []string{"emp-9"},
			admins:    admins,
			want:      []string{"emp-1"},
		},
		{
			name:      "employee note notifies admins and attachees",
			kind:      EventNoteAdded,
			actorRole: "employee",
			actorID:   "emp-1",
			assignees: []string{"emp-1"},
			attachees: []string{"emp-9"},
			admins:    admins,
			want:      []string{"admin-1", "admin-2", "emp-9"},
		},
		{
			name:      "admin note notifies assignees and attachees",
			kind:      EventNoteAdded,
			actorRole: "admin",
			actorID:   "admin-1",
			assignees: []string{"emp-1", "emp-2"},
			attachees: []string{"emp-9"},
			admins:    admins,
			want:      []string{"emp-1", "emp-2", "emp-9"},
		},
		{
			name:      "superadmin treated as admin side",
			kind:      EventFileUploaded,
			actorRole: "superadmin",
			actorID:   "sa-1",
			assignees: []string{"emp-1"},
			admins:    admins,
			want:      []string{"emp-1"},
		},
		{
			name:      "assignment notifies assignees and attachees regardless of role",
			kind:      EventTaskAssigned,
			actorRole: "admin",
			actorID:   "admin-1",
			assignees: []string{"emp-1", "emp-2"},
			attachees: []string{"emp-9"},
			admins:    admins,
			want:      []string{"emp-1", "emp-2", "emp-9"},
		},
		{
			name:      "self-assignment is suppressed",
			kind:      EventTaskAssigned,
			actorRole: "admin",
			actorID:   "admin-1",
			assignees: []string{"admin-1"},
			admins:    admins,
			want:      []string{},
		},
		{
			name:      "employee status change notifies admins and attachees",
			kind:      EventTaskStatusChanged,
			actorRole: "employee",
			actorID:   "emp-1",
			assignees: []string{"emp-1"},
			attachees: []string{"emp-9"},
			admins:    admins,
			want:      []string{"admin-1", "admin-2", "emp-9"},
		},
		{
			name:      "admin edit notifies assignees and attachees",
			kind:      EventTaskUpdated,
			actorRole: "admin",
			actorID:   "admin-1",
			assignees: []string{"emp-2", "emp-1"},
			attachees: []string{"emp-9"},
			admins:    admins,
			want:      []string{"emp-1", "emp-2", "emp-9"},
		},
		{
			name:      "actor removed even when also an attachee",
			kind:      EventNoteAdded,
			actorRole: "employee",
			actorID:   "emp-9",
			assignees: []string{"emp-1"},
			attachees: []string{"emp-9"},
			admins:    admins,
			want:      []string{"admin-1", "admin-2"},
		},
		{
			name:      "acting admin filtered from admin roster",
			kind:      EventProgressUpdated,
			actorRole: "employee",
			actorID:   "admin-1",
			assignees: []string{"emp-1"},
			admins:    admins,
			want:      []string{"admin-2"},
		},
		{
			name:      "duplicate ids collapse",
			kind:      EventTaskAssigned,
			actorRole: "admin",
			actorID:   "admin-1",
			assignees: []string{"emp-1", "emp-1"},
			attachees: []string{"emp-1"},
			admins:    admins,
			want:      []string{"emp-1"},
		},
		{
			name:      "empty ids dropped",
			kind:      EventTaskAssigned,
			actorRole: "admin",
			actorID:   "admin-1",
			assignees: []string{"", "emp-1"},
			attachees: []string{""},
			admins:    admins,
			want:      []string{"emp-1"},
		},
		{
			name:      "no assignees means no recipients for admin progress",
			kind:      EventProgressUpdated,
			actorRole: "admin",
			actorID:   "admin-1",
			assignees: nil,
			admins:    admins,
			want:      []string{},
		},
		{
			name:      "unknown kind yields nothing",
			kind:      "task_archived",
			actorRole: "admin",
			actorID:   "admin-1",
			assignees: []string{"emp-1"},
			admins:    admins,
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveRecipients(tt.kind, tt.actorRole, tt.actorID, tt.assignees, tt.attachees, tt.admins)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ResolveRecipients() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveRecipientsSorted(t *testing.T) {
	got := ResolveRecipients(EventTaskAssigned, "admin", "admin-1",
		[]string{"emp-3", "emp-1"}, []string{"emp-2"}, nil)
	want := []string{"emp-1", "emp-2", "emp-3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected sorted recipients %v, got %v", want, got)
	}
}
