package rbac

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// RolePermissions is the portal's default policy.
var RolePermissions = map[string][]string{
	RoleStudent: {
		"exam:view",
		"attempt:create",
		"attempt:submit",
		"attempt:view-own",
		"asset:view",
	},
	RoleTeacher: {
		"exam:create",
		"exam:list",
		"exam:delete_own",
		"exam:view",
		"exam:export",
		"attempt:view-all",
		"asset:view",
	},
	RoleAdmin: {
		"*", // everything
	},
}
