package rbac

// Default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"exam:view",
		"attempt:create",
		"attempt:save",
		"attempt:submit",
		"attempt:view-own",
		"report:view-own",
		"user:change_password",
	},
	"teacher": {
		"exam:create",
		"exam:view",
		"exam:delete_own",
		"attempt:view-all",
		"report:view-all",
		"asset:upload",
		"users:bulk_upsert",
		"users:list",
	},
	"admin": {
		"*", // everything
	},
}
