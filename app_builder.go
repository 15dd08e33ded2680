package raymarch

type AppBuilder struct {
	modules []Module
}

func NewAppBuilder() *AppBuilder {
	return &AppBuilder{}
}

func (b *AppBuilder) UseModule(modules ...Module) *AppBuilder {
	b.modules = append(b.modules, modules...)

	return b
}

// Build installs the modules in the order they were given.
func (b *AppBuilder) Build() *App {
	app := NewApp()
	app.UseModules(b.modules...)
	return app
}
