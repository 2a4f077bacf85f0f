package scripting

import lua "github.com/yuin/gopher-lua"

// Grants receives the effects a trait script declares. Each method returns an
// error for names or bonus types it does not recognise; the error is raised
// inside the script.
type Grants interface {
	Skill(skill, bonusType string, value int, condition string) error
	Ability(ability, bonusType string, value int) error
	Save(save, bonusType string, value int, condition string) error
	Language(name string) error
	Sense(sense string, feet int) error
}

// RegisterGrants installs the grant table in L bound to g:
//
//	grant.skill(name, type, value[, condition])
//	grant.ability(name, type, value)
//	grant.save(name, type, value[, condition])
//	grant.language(name)
//	grant.sense(name, feet)
//
// Precondition: L must belong to a Sandbox; g must be non-nil.
// Postcondition: grant global is defined in L.
func RegisterGrants(L *lua.LState, g Grants) {
	t := L.NewTable()
	L.SetFuncs(t, map[string]lua.LGFunction{
		"skill": func(L *lua.LState) int {
			raise(L, "skill", g.Skill(L.CheckString(1), L.CheckString(2), L.CheckInt(3), L.OptString(4, "")))
			return 0
		},
		"ability": func(L *lua.LState) int {
			raise(L, "ability", g.Ability(L.CheckString(1), L.CheckString(2), L.CheckInt(3)))
			return 0
		},
		"save": func(L *lua.LState) int {
			raise(L, "save", g.Save(L.CheckString(1), L.CheckString(2), L.CheckInt(3), L.OptString(4, "")))
			return 0
		},
		"language": func(L *lua.LState) int {
			raise(L, "language", g.Language(L.CheckString(1)))
			return 0
		},
		"sense": func(L *lua.LState) int {
			raise(L, "sense", g.Sense(L.CheckString(1), L.CheckInt(2)))
			return 0
		},
	})
	L.SetGlobal("grant", t)
}

func raise(L *lua.LState, fn string, err error) {
	if err != nil {
		L.RaiseError("grant.%s: %s", fn, err.Error())
	}
}
