package keybinds

// Action represents a user action that can be triggered by a keybinding
type Action string

// Context represents the screen in which keybindings are active
type Context string

const (
	ContextGlobal    Context = "global"    // Available everywhere
	ContextCatalog   Context = "catalog"   // Table list
	ContextSearch    Context = "search"    // Catalog filter input
	ContextDrawer    Context = "drawer"    // Generated code drawer
	ContextJump      Context = "jump"      // Fuzzy table jump input
	ContextConfigure Context = "configure" // Connection form
	ContextHistory   Context = "history"   // Generation history modal
	ContextHelp      Context = "help"      // Help viewer
	ContextModal     Context = "modal"     // Error detail and other read-only modals
)

const (
	ActionQuit      Action = "quit"
	ActionQuitForce Action = "quit_force"

	// Navigation
	ActionNavigateUp   Action = "navigate_up"
	ActionNavigateDown Action = "navigate_down"
	ActionPageUp       Action = "page_up"
	ActionPageDown     Action = "page_down"
	ActionGoToTop      Action = "go_to_top"
	ActionGoToBottom   Action = "go_to_bottom"

	// Catalog
	ActionToggleSelect   Action = "toggle_select"
	ActionClearSelection Action = "clear_selection"
	ActionOpenSearch     Action = "open_search"
	ActionRefresh        Action = "refresh"
	ActionModeSQLModel   Action = "mode_sqlmodel"
	ActionModeTortoise   Action = "mode_tortoise"
	ActionOpenDrawer     Action = "open_drawer"

	// Drawer
	ActionNextTable    Action = "next_table"
	ActionPrevTable    Action = "prev_table"
	ActionNextArtifact Action = "next_artifact"
	ActionPrevArtifact Action = "prev_artifact"
	ActionCopyArtifact Action = "copy_artifact"
	ActionOpenJump     Action = "open_jump"

	// Modal launchers
	ActionOpenConfigure   Action = "open_configure"
	ActionOpenHistory     Action = "open_history"
	ActionOpenHelp        Action = "open_help"
	ActionOpenErrorDetail Action = "open_error_detail"

	// History
	ActionHistoryClear Action = "history_clear"
	ActionHistoryStats Action = "history_stats"

	// Forms and inputs
	ActionNextField  Action = "next_field"
	ActionPrevField  Action = "prev_field"
	ActionTextSubmit Action = "text_submit"
	ActionTextCancel Action = "text_cancel"

	ActionCloseModal Action = "close_modal"
)

// contexts lists every context a config file may name
var contexts = []Context{
	ContextGlobal,
	ContextCatalog,
	ContextSearch,
	ContextDrawer,
	ContextJump,
	ContextConfigure,
	ContextHistory,
	ContextHelp,
	ContextModal,
}

// knownActions is the set of actions a config file may bind
var knownActions = map[Action]bool{
	ActionQuit: true, ActionQuitForce: true,
	ActionNavigateUp: true, ActionNavigateDown: true, ActionPageUp: true, ActionPageDown: true,
	ActionGoToTop: true, ActionGoToBottom: true,
	ActionToggleSelect: true, ActionClearSelection: true, ActionOpenSearch: true, ActionRefresh: true,
	ActionModeSQLModel: true, ActionModeTortoise: true, ActionOpenDrawer: true,
	ActionNextTable: true, ActionPrevTable: true, ActionNextArtifact: true, ActionPrevArtifact: true,
	ActionCopyArtifact: true, ActionOpenJump: true,
	ActionOpenConfigure: true, ActionOpenHistory: true, ActionOpenHelp: true, ActionOpenErrorDetail: true,
	ActionHistoryClear: true, ActionHistoryStats: true,
	ActionNextField: true, ActionPrevField: true, ActionTextSubmit: true, ActionTextCancel: true,
	ActionCloseModal: true,
}

// IsKnown reports whether a is an action the panel handles
func IsKnown(a Action) bool {
	return knownActions[a]
}

// IsContext reports whether c names a binding context
func IsContext(c Context) bool {
	for _, known := range contexts {
		if known == c {
			return true
		}
	}
	return false
}
