// Package command defines the commands of the character creation screen and
// resolves typed input to them.
package command

// Categories for organizing commands in help output.
const (
	CategoryNavigation = "navigation"
	CategoryRace       = "race"
	CategoryClass      = "class"
	CategoryAbilities  = "abilities"
	CategoryDraft      = "draft"
	CategorySystem     = "system"
	CategoryAdmin      = "admin"
)

// Categories returns the categories in help display order.
func Categories() []string {
	return []string{
		CategoryNavigation, CategoryRace, CategoryClass, CategoryAbilities,
		CategoryDraft, CategorySystem, CategoryAdmin,
	}
}

// Handler identifiers mapping commands to creation screen actions.
const (
	HandlerTab       = "tab"
	HandlerSub       = "sub"
	HandlerRace      = "race"
	HandlerTrait     = "trait"
	HandlerReset     = "reset"
	HandlerClass     = "class"
	HandlerArchetype = "archetype"
	HandlerFavored   = "favored"
	HandlerRoll      = "roll"
	HandlerAssign    = "assign"
	HandlerFloat     = "float"
	HandlerFeat      = "feat"
	HandlerName      = "name"
	HandlerBonus     = "bonus"
	HandlerSheet     = "sheet"
	HandlerSave      = "save"
	HandlerCancel    = "cancel"
	HandlerHelp      = "help"
	HandlerQuit      = "quit"
	HandlerWho       = "who"
	HandlerAnnounce  = "announce"
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage shows the arguments, e.g. "race <name>".
	Usage string
	// Help is the short help text displayed to players.
	Help string
	// Category groups the command for help output.
	Category string
	// Handler names the screen action the command runs.
	Handler string
	// Roles, when non-empty, restricts the command to accounts holding one of them.
	Roles []string
}

// Allowed reports whether an account with role may run the command.
func (c *Command) Allowed(role string) bool {
	if len(c.Roles) == 0 {
		return true
	}
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// BuiltinCommands returns every command of the creation screen.
func BuiltinCommands() []Command {
	staff := []string{"gm", "admin"}
	return []Command{
		{Name: "tab", Aliases: []string{"t"}, Usage: "tab <race|class|abilities|review>", Help: "Switch to a top-level tab", Category: CategoryNavigation, Handler: HandlerTab},
		{Name: "sub", Aliases: []string{"st"}, Usage: "sub <sub-tab>", Help: "Switch the race or class sub-tab", Category: CategoryNavigation, Handler: HandlerSub},

		{Name: "race", Aliases: []string{"r"}, Usage: "race <name>", Help: "Select a race", Category: CategoryRace, Handler: HandlerRace},
		{Name: "trait", Aliases: []string{"alt"}, Usage: "trait <alternate trait>", Help: "Toggle an alternate racial trait", Category: CategoryRace, Handler: HandlerTrait},
		{Name: "reset", Usage: "reset <race|class>", Help: "Clear the race or class and everything that depends on it", Category: CategoryRace, Handler: HandlerReset},

		{Name: "class", Aliases: []string{"c"}, Usage: "class <name>", Help: "Select a class", Category: CategoryClass, Handler: HandlerClass},
		{Name: "archetype", Aliases: []string{"arch"}, Usage: "archetype <name>", Help: "Toggle an archetype of the selected class", Category: CategoryClass, Handler: HandlerArchetype},
		{Name: "favored", Aliases: []string{"fc"}, Usage: "favored <option>", Help: "Choose the favored class bonus", Category: CategoryClass, Handler: HandlerFavored},

		{Name: "roll", Usage: "roll <standard|classic|heroic|pointbuy> [budget]", Help: "Generate ability scores", Category: CategoryAbilities, Handler: HandlerRoll},
		{Name: "assign", Aliases: []string{"as"}, Usage: "assign <ability> <score>", Help: "Assign a rolled or bought score to an ability", Category: CategoryAbilities, Handler: HandlerAssign},
		{Name: "float", Usage: "float [source] <ability>", Help: "Place a floating ability bonus", Category: CategoryAbilities, Handler: HandlerFloat},
		{Name: "feat", Usage: "feat <source> <feat>", Help: "Fill a bonus feat slot", Category: CategoryAbilities, Handler: HandlerFeat},

		{Name: "name", Usage: "name <character name>", Help: "Name the character", Category: CategoryDraft, Handler: HandlerName},
		{Name: "bonus", Aliases: []string{"bonuses"}, Help: "List every bonus applied so far", Category: CategoryDraft, Handler: HandlerBonus},
		{Name: "sheet", Help: "Show the derived character sheet", Category: CategoryDraft, Handler: HandlerSheet},
		{Name: "save", Help: "Finish the character and store it", Category: CategoryDraft, Handler: HandlerSave},
		{Name: "cancel", Help: "Discard the draft and return to the character menu", Category: CategoryDraft, Handler: HandlerCancel},

		{Name: "help", Aliases: []string{"?"}, Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit"}, Help: "Disconnect; the draft is kept", Category: CategorySystem, Handler: HandlerQuit},

		{Name: "who", Help: "List connected players", Category: CategoryAdmin, Handler: HandlerWho, Roles: staff},
		{Name: "announce", Usage: "announce <message>", Help: "Send a notice to every connected player", Category: CategoryAdmin, Handler: HandlerAnnounce, Roles: []string{"admin"}},
	}
}
