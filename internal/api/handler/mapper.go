package handler

import (
	"github.com/99minutos/identity-system/internal/core/domain"
)

// --- Domain → Response ---

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		Username: u.Username,
		Email:    u.Email,
		Roles:    u.RoleNames(),
	}
}

func toPrincipalResponse(p domain.Principal) userResponse {
	roles := p.Roles
	if roles == nil {
		roles = []string{}
	}
	return userResponse{
		Username: p.Username,
		Email:    p.Email,
		Roles:    roles,
	}
}

func toUserDetailResponse(u *domain.User) userDetailResponse {
	return userDetailResponse{
		ID:        u.ID.String(),
		Username:  u.Username,
		Email:     u.Email,
		Roles:     u.RoleNames(),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toUserPageResponse(p domain.Page[*domain.User]) userPageResponse {
	content := make([]userResponse, 0, len(p.Items))
	for _, u := range p.Items {
		content = append(content, toUserResponse(u))
	}
	return userPageResponse{
		Content:       content,
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: p.Total,
		TotalPages:    p.TotalPages,
	}
}

func toRoleResponses(roles []domain.Role) []roleResponse {
	out := make([]roleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, roleResponse{Role: r.Name, GrantedAt: r.CreatedAt})
	}
	return out
}

func toEventResponses(events []domain.SecurityEvent) []eventResponse {
	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, eventResponse{
			ID:         e.ID.String(),
			Type:       string(e.Type),
			Detail:     e.Detail,
			OccurredAt: e.OccurredAt,
		})
	}
	return out
}
