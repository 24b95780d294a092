package keybinds

// NewDefaultRegistry creates a registry with the default keybindings
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	registerGlobalBindings(r)
	registerCatalogBindings(r)
	registerInputBindings(r)
	registerDrawerBindings(r)
	registerConfigureBindings(r)
	registerHistoryBindings(r)
	registerViewerBindings(r)

	return r
}

func registerGlobalBindings(r *Registry) {
	r.Register(ContextGlobal, "ctrl+c", ActionQuitForce)
}

// registerNavigation binds list movement keys in context
func registerNavigation(r *Registry, context Context) {
	r.RegisterMultiple(context, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(context, []string{"down", "j"}, ActionNavigateDown)
	r.RegisterMultiple(context, []string{"pgup", "ctrl+u"}, ActionPageUp)
	r.RegisterMultiple(context, []string{"pgdown", "ctrl+d"}, ActionPageDown)
	r.RegisterMultiple(context, []string{"gg", "home"}, ActionGoToTop)
	r.RegisterMultiple(context, []string{"G", "end"}, ActionGoToBottom)
}

func registerCatalogBindings(r *Registry) {
	registerNavigation(r, ContextCatalog)
	r.Register(ContextCatalog, "q", ActionQuit)
	r.RegisterMultiple(ContextCatalog, []string{" ", "x"}, ActionToggleSelect)
	r.Register(ContextCatalog, "c", ActionClearSelection)
	r.Register(ContextCatalog, "/", ActionOpenSearch)
	r.Register(ContextCatalog, "r", ActionRefresh)
	r.Register(ContextCatalog, "s", ActionModeSQLModel)
	r.Register(ContextCatalog, "t", ActionModeTortoise)
	r.RegisterMultiple(ContextCatalog, []string{"enter", "tab"}, ActionOpenDrawer)
	r.Register(ContextCatalog, "C", ActionOpenConfigure)
	r.Register(ContextCatalog, "H", ActionOpenHistory)
	r.Register(ContextCatalog, "?", ActionOpenHelp)
	r.Register(ContextCatalog, "E", ActionOpenErrorDetail)
}

func registerInputBindings(r *Registry) {
	for _, c := range []Context{ContextSearch, ContextJump} {
		r.Register(c, "enter", ActionTextSubmit)
		r.Register(c, "esc", ActionTextCancel)
	}
	r.RegisterMultiple(ContextJump, []string{"up", "ctrl+p"}, ActionNavigateUp)
	r.RegisterMultiple(ContextJump, []string{"down", "ctrl+n"}, ActionNavigateDown)
}

func registerDrawerBindings(r *Registry) {
	r.RegisterMultiple(ContextDrawer, []string{"esc", "q"}, ActionCloseModal)
	r.RegisterMultiple(ContextDrawer, []string{"tab", "J"}, ActionNextTable)
	r.RegisterMultiple(ContextDrawer, []string{"shift+tab", "K"}, ActionPrevTable)
	r.RegisterMultiple(ContextDrawer, []string{"right", "l"}, ActionNextArtifact)
	r.RegisterMultiple(ContextDrawer, []string{"left", "h"}, ActionPrevArtifact)
	r.RegisterMultiple(ContextDrawer, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ContextDrawer, []string{"down", "j"}, ActionNavigateDown)
	r.RegisterMultiple(ContextDrawer, []string{"pgup", "ctrl+u"}, ActionPageUp)
	r.RegisterMultiple(ContextDrawer, []string{"pgdown", "ctrl+d"}, ActionPageDown)
	r.RegisterMultiple(ContextDrawer, []string{"gg", "home"}, ActionGoToTop)
	r.RegisterMultiple(ContextDrawer, []string{"G", "end"}, ActionGoToBottom)
	r.Register(ContextDrawer, "y", ActionCopyArtifact)
	r.Register(ContextDrawer, "/", ActionOpenJump)
	r.Register(ContextDrawer, "s", ActionModeSQLModel)
	r.Register(ContextDrawer, "t", ActionModeTortoise)
	r.Register(ContextDrawer, "E", ActionOpenErrorDetail)
	r.Register(ContextDrawer, "?", ActionOpenHelp)
}

func registerConfigureBindings(r *Registry) {
	r.RegisterMultiple(ContextConfigure, []string{"tab", "down"}, ActionNextField)
	r.RegisterMultiple(ContextConfigure, []string{"shift+tab", "up"}, ActionPrevField)
	r.Register(ContextConfigure, "enter", ActionTextSubmit)
	r.Register(ContextConfigure, "esc", ActionTextCancel)
}

func registerHistoryBindings(r *Registry) {
	registerNavigation(r, ContextHistory)
	r.RegisterMultiple(ContextHistory, []string{"esc", "q", "H"}, ActionCloseModal)
	r.Register(ContextHistory, "C", ActionHistoryClear)
	r.Register(ContextHistory, "s", ActionHistoryStats)
	r.Register(ContextHistory, "r", ActionRefresh)
}

func registerViewerBindings(r *Registry) {
	for _, c := range []Context{ContextHelp, ContextModal} {
		r.RegisterMultiple(c, []string{"up", "k"}, ActionNavigateUp)
		r.RegisterMultiple(c, []string{"down", "j"}, ActionNavigateDown)
		r.RegisterMultiple(c, []string{"gg", "home"}, ActionGoToTop)
		r.RegisterMultiple(c, []string{"G", "end"}, ActionGoToBottom)
		r.RegisterMultiple(c, []string{"esc", "q"}, ActionCloseModal)
	}
	r.Register(ContextHelp, "?", ActionCloseModal)
}
