package rbac

// Default policy. Learners consume videos and submit responses; instructors
// author elements and read aggregate stats; admin can do everything.
var RolePermissions = map[string][]string{
	"learner": {
		"video:view",
		"element:view",
		"response:submit",
		"progress:view-own",
		"progress:reset-own",
	},
	"instructor": {
		"video:view",
		"video:create",
		"video:update",
		"element:view",
		"element:view-key",
		"element:create",
		"element:update",
		"element:delete",
		"response:submit",
		"progress:view-own",
		"progress:view-all",
		"stats:view",
	},
	"admin": {
		"*", // everything
	},
}
