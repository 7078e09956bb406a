package auth

import "fmt"

// Role 闭合角色枚举。新增角色必须回查所有 gate 的 switch 分支。
type Role string

const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

// AllRoles 用于"任意已认证角色"的路由声明。
var AllRoles = []Role{RoleViewer, RoleEditor, RoleAdmin}

// Valid 判断是否为三个已知角色之一，未知值一律视为非法（fail-closed）。
func (r Role) Valid() bool {
	switch r {
	case RoleViewer, RoleEditor, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// ParseRole 从存储/入参字符串收敛到枚举；未知值报错而不是放行。
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleViewer:
		return RoleViewer, nil
	case RoleEditor:
		return RoleEditor, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", fmt.Errorf("unknown role: %q", s)
}
