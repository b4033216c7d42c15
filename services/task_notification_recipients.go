package services

import (
	"sort"

	"erp-task-api/models"
)

// ResolveRecipients computes the recipient set for one task event. Pure
// function: no database access, no clock.
//
// Rules by kind and actor role:
//
//	progress_updated    employee         -> admins
//	progress_updated    admin/superadmin -> assignees
//	note_added          admin/superadmin -> assignees + attachees
//	note_added          employee         -> admins + attachees
//	file_uploaded       admin/superadmin -> assignees + attachees
//	file_uploaded       employee         -> admins + attachees
//	task_assigned       any              -> assignees + attachees
//	task_status_changed admin/superadmin -> assignees + attachees
//	task_status_changed employee         -> admins + attachees
//	task_updated        admin/superadmin -> assignees + attachees
//	task_updated        employee         -> admins + attachees
//	anything else       any              -> empty
//
// Progress events never expand to attachees; they only cross to the
// opposite side (employee -> admins, admin -> assignees). The actor is
// always removed from the result, whatever the kind. Empty ids are
// stripped and the result is sorted ascending so callers process
// recipients in a deterministic order.
func ResolveRecipients(kind, actorRole, actorID string, assignees, attachees, admins []string) []string {
	set := make(map[string]struct{})
	add := func(ids []string) {
		for _, id := range ids {
			if id != "" {
				set[id] = struct{}{}
			}
		}
	}

	switch kind {
	case EventProgressUpdated:
		if models.IsAdminRole(actorRole) {
			add(assignees)
		} else {
			add(admins)
		}
	case EventNoteAdded, EventFileUploaded, EventTaskStatusChanged, EventTaskUpdated:
		if models.IsAdminRole(actorRole) {
			add(assignees)
		} else {
			add(admins)
		}
		add(attachees)
	case EventTaskAssigned:
		add(assignees)
		add(attachees)
	default:
		return nil
	}

	delete(set, actorID)

	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
