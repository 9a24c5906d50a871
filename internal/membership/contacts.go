package membership

import (
	"sort"

	"github.com/yukikurage/project-dashboard-api/internal/models"
)

// ChatContacts returns who viewer may message, in user order, without viewer.
//
//	admin:       every other user
//	team lead:   admins and the lead's team members
//	team member: admins, leads of the member's projects, and members sharing a project
func ChatContacts(viewer models.User, users []models.User, projects []models.Project, tasks []models.Task) []models.User {
	allowed := map[uint64]bool{}

	switch viewer.Role {
	case models.RoleAdmin:
		for _, u := range users {
			allowed[u.ID] = true
		}
	case models.RoleTeamLead:
		markRole(allowed, users, models.RoleAdmin)
		for _, u := range LeadTeamMembers(viewer.ID, users, projects, tasks) {
			allowed[u.ID] = true
		}
	case models.RoleTeamMember:
		markRole(allowed, users, models.RoleAdmin)
		roles := make(map[uint64]models.Role, len(users))
		for _, u := range users {
			roles[u.ID] = u.Role
		}
		mine := MemberProjects(viewer.ID, projects, tasks)
		for _, p := range mine {
			if p.TeamLeadID != nil && roles[*p.TeamLeadID] == models.RoleTeamLead {
				allowed[*p.TeamLeadID] = true
			}
		}
		for _, t := range ProjectTasks(mine, tasks) {
			if roles[t.AssignedTo] == models.RoleTeamMember {
				allowed[t.AssignedTo] = true
			}
		}
	}
	delete(allowed, viewer.ID)

	out := []models.User{}
	for _, u := range users {
		if allowed[u.ID] {
			out = append(out, u)
		}
	}
	return out
}

func markRole(set map[uint64]bool, users []models.User, role models.Role) {
	for _, u := range users {
		if u.Role == role {
			set[u.ID] = true
		}
	}
}

// Conversation is one chat thread between the viewer and a contact.
type Conversation struct {
	Contact     models.User      `json:"contact"`
	Messages    []models.Message `json:"messages"`
	LastMessage *models.Message  `json:"last_message"`
	UnreadCount int              `json:"unread_count"`
}

// Thread returns the messages exchanged between a and b, oldest first.
func Thread(a, b uint64, messages []models.Message) []models.Message {
	out := []models.Message{}
	for _, m := range messages {
		if m.Involves(a, b) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// UnreadFrom counts unread messages sent by peer to viewerID.
func UnreadFrom(viewerID, peer uint64, messages []models.Message) int {
	n := 0
	for _, m := range messages {
		if m.FromUserID == peer && m.ToUserID == viewerID && !m.Read {
			n++
		}
	}
	return n
}

// Conversations builds one conversation per contact, in contact order.
func Conversations(viewer models.User, contacts []models.User, messages []models.Message) []Conversation {
	out := make([]Conversation, 0, len(contacts))
	for _, c := range contacts {
		thread := Thread(viewer.ID, c.ID, messages)
		conv := Conversation{
			Contact:     c,
			Messages:    thread,
			UnreadCount: UnreadFrom(viewer.ID, c.ID, thread),
		}
		if len(thread) > 0 {
			last := thread[len(thread)-1]
			conv.LastMessage = &last
		}
		out = append(out, conv)
	}
	return out
}
