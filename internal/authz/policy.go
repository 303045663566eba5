// Package authz holds the role-based authorization policy for the API.
//
// Role checks live here and nowhere else. Ownership rules (a manager's own
// employees, a comment's author, a post's giver) depend on stored data and are
// enforced by the services that load that data.
package authz

import "github.com/zetarewards/recognition-api/internal/models"

// Resource names a family of operations.
type Resource string

// Action names an operation on a resource.
type Action string

// Resources.
const (
	ResourceBudget         Resource = "budget"
	ResourceAllocation     Resource = "allocation"
	ResourceIssuance       Resource = "issuance"
	ResourceRedemption     Resource = "redemption"
	ResourceBalance        Resource = "balance"
	ResourceCatalog        Resource = "catalog"
	ResourceRewardReason   Resource = "reward_reason"
	ResourceRewardCategory Resource = "reward_category"
	ResourceUser           Resource = "user"
	ResourceDepartment     Resource = "department"
	ResourceAuditLog       Resource = "audit_log"
	ResourceProfile        Resource = "profile"
	ResourceTeam           Resource = "team"
	ResourceManager        Resource = "manager"
	ResourcePost           Resource = "post"
	ResourceComment        Resource = "comment"
	ResourceNotification   Resource = "notification"
	ResourcePushSub        Resource = "push_subscription"
	ResourceLeaderboard    Resource = "leaderboard"
	ResourceTeamBoard      Resource = "team_leaderboard"
	ResourcePeerBoard      Resource = "peer_leaderboard"
)

// Actions.
const (
	ActionRead   Action = "read"
	ActionList   Action = "list"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

type rule struct {
	resource Resource
	action   Action
}

var (
	admin    = []string{models.RoleAdmin}
	manager  = []string{models.RoleManager}
	employee = []string{models.RoleEmployee}
	givers   = []string{models.RoleAdmin, models.RoleManager}
	everyone = []string{models.RoleAdmin, models.RoleManager, models.RoleEmployee}
)

var policy = map[rule][]string{
	{ResourceBudget, ActionRead}:   admin,
	{ResourceBudget, ActionUpdate}: admin,

	{ResourceAllocation, ActionCreate}: admin,
	{ResourceAllocation, ActionUpdate}: admin,

	{ResourceIssuance, ActionCreate}: givers,
	{ResourceIssuance, ActionList}:   givers,

	{ResourceRedemption, ActionCreate}: employee,
	{ResourceRedemption, ActionRead}:   employee,
	{ResourceRedemption, ActionList}:   admin,
	{ResourceRedemption, ActionUpdate}: admin,

	{ResourceBalance, ActionRead}: employee,

	{ResourceCatalog, ActionList}:   everyone,
	{ResourceCatalog, ActionRead}:   admin,
	{ResourceCatalog, ActionCreate}: admin,
	{ResourceCatalog, ActionUpdate}: admin,
	{ResourceCatalog, ActionDelete}: admin,

	{ResourceRewardReason, ActionList}:   givers,
	{ResourceRewardReason, ActionRead}:   admin,
	{ResourceRewardReason, ActionCreate}: admin,
	{ResourceRewardReason, ActionUpdate}: admin,
	{ResourceRewardReason, ActionDelete}: admin,

	{ResourceRewardCategory, ActionList}:   admin,
	{ResourceRewardCategory, ActionRead}:   admin,
	{ResourceRewardCategory, ActionCreate}: admin,
	{ResourceRewardCategory, ActionUpdate}: admin,
	{ResourceRewardCategory, ActionDelete}: admin,

	{ResourceUser, ActionList}:   admin,
	{ResourceUser, ActionUpdate}: admin,
	{ResourceUser, ActionDelete}: admin,

	{ResourceDepartment, ActionList}:   admin,
	{ResourceDepartment, ActionCreate}: admin,
	{ResourceDepartment, ActionUpdate}: admin,
	{ResourceDepartment, ActionDelete}: admin,

	{ResourceAuditLog, ActionList}: admin,

	{ResourceProfile, ActionRead}:   everyone,
	{ResourceProfile, ActionUpdate}: employee,

	{ResourceTeam, ActionList}:    manager,
	{ResourceManager, ActionRead}: employee,

	{ResourcePost, ActionList}:   everyone,
	{ResourcePost, ActionCreate}: givers,
	{ResourcePost, ActionUpdate}: givers,
	{ResourcePost, ActionDelete}: admin,

	{ResourceComment, ActionCreate}: everyone,
	{ResourceComment, ActionDelete}: everyone,

	{ResourceNotification, ActionCreate}: employee,
	{ResourceNotification, ActionList}:   everyone,

	{ResourcePushSub, ActionCreate}: everyone,
	{ResourcePushSub, ActionDelete}: everyone,

	{ResourceLeaderboard, ActionList}: admin,
	{ResourceTeamBoard, ActionList}:   givers,
	{ResourcePeerBoard, ActionList}:   employee,
}

// Allow reports whether role may perform action on resource.
// Unknown roles, resources and actions are denied.
func Allow(role string, resource Resource, action Action) bool {
	for _, r := range policy[rule{resource, action}] {
		if r == role {
			return true
		}
	}
	return false
}

// Identity is the authenticated caller, as vouched for by the token.
type Identity struct {
	ID   uint   `json:"id"`
	Role string `json:"role"`
}

// Can is shorthand for Allow with the identity's role.
func (i Identity) Can(resource Resource, action Action) bool {
	return Allow(i.Role, resource, action)
}
