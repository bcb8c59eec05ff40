package http

// Handlers agrupa los handlers que el router monta.
type Handlers struct {
	Auth         *AuthHandler
	Scholarships *ScholarshipHandler
	Universities *UniversityHandler
	Reference    *ReferenceHandler
	Applications *ApplicationHandler
	Favorites    *FavoriteHandler
	Analytics    *AnalyticsHandler
	Health       *HealthHandler
}
