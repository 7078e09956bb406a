package auth

// Operation 受保护的文章操作。
type Operation string

const (
	OpView   Operation = "view"
	OpCreate Operation = "create"
	OpEdit   Operation = "edit"
	OpDelete Operation = "delete"
)

// Decision 单次授权判定结果。拒绝是正常返回值而非 error，
// 只有基础设施故障才走 error 通道。
type Decision struct {
	Allowed bool
	Reason  string
}

const (
	ReasonInsufficientRole = "insufficient role"
	ReasonNotOwner         = "not resource owner"
	ReasonUnknownRole      = "unknown role"
)

func Allow() Decision             { return Decision{Allowed: true} }
func Deny(reason string) Decision { return Decision{Reason: reason} }

// AuthorizeRole 角色闸门：身份角色在允许集合内才放行。
// Admin 没有隐式旁路，每个操作必须显式列出它允许的角色；
// 未知角色一律拒绝。O(角色集合大小)，无副作用。
func AuthorizeRole(id Identity, allowed ...Role) Decision {
	if !id.Role.Valid() {
		return Deny(ReasonUnknownRole)
	}
	for _, r := range allowed {
		if id.Role == r {
			return Allow()
		}
	}
	return Deny(ReasonInsufficientRole)
}

// AuthorizeOwnership 所有权闸门。只有 edit 有所有权维度：
//
//	admin  -> 无条件放行
//	editor -> 仅自己的文章
//	viewer -> 拒绝（正常流程中已被角色闸门拦下）
//
// delete 仅由角色闸门管控（admin-only），view/create 无所有权语义。
// 调用方必须先确认资源存在（缺失资源走 not found，不进本闸门）。
func AuthorizeOwnership(id Identity, resourceOwnerID string, op Operation) Decision {
	switch op {
	case OpView, OpCreate, OpDelete:
		return Allow()
	case OpEdit:
		switch id.Role {
		case RoleAdmin:
			return Allow()
		case RoleEditor:
			if id.UserID != "" && id.UserID == resourceOwnerID {
				return Allow()
			}
			return Deny(ReasonNotOwner)
		case RoleViewer:
			return Deny(ReasonInsufficientRole)
		}
		return Deny(ReasonUnknownRole)
	}
	return Deny("unknown operation")
}
