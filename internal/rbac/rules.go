package rbac

// Default portal policy. Students read, faculty run projects and submit
// their track, reviewers submit theirs, admin does everything.
var RolePermissions = map[string][]string{
	"student": {
		"project:view",
		"evaluation:view",
	},
	"faculty": {
		"project:create",
		"project:view",
		"team:create",
		"evaluation:create",
		"evaluation:view",
		"evaluation:import",
		"evaluation:submit-faculty",
		"users:list",
	},
	"reviewer": {
		"project:view",
		"evaluation:view",
		"evaluation:submit-reviewer",
	},
	"admin": {
		"*", // everything
	},
}
