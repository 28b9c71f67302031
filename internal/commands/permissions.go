package commands

import "go-antiraid/internal/whitelist"

func (h *Handler) allowed(cmd command, req *Request) bool {
	switch cmd.access {
	case accessImmortal:
		return h.privileges.IsImmortal(req.AuthorID)
	case accessTier:
		return h.privileges.IsAuthorized(req.AuthorID, req.RoleIDs, cmd.tier)
	default:
		return true
	}
}

// canUse reports whether the author may run name; used to tailor the help embed.
func (h *Handler) canUse(name string, req *Request) bool {
	cmd, ok := h.commands[name]
	return ok && h.allowed(cmd, req)
}

var tierNames = func() string {
	names := ""
	for i, t := range whitelist.Tiers {
		if i > 0 {
			names += ", "
		}
		names += string(t)
	}
	return names
}()
