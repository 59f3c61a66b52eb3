package handlers

// pageMessages holds the handful of strings rendered by the server pages, keyed by locale.
var pageMessages = map[string]map[string]string{
	"es": {
		"app.title":           "El Santuario",
		"nav.logout":          "Cerrar sesión",
		"field.name":          "Nombre",
		"field.email":         "Correo electrónico",
		"field.password":      "Contraseña",
		"field.role":          "Rol",
		"field.nombre":        "Nombre",
		"field.especie":       "Especie",
		"field.nivel":         "Nivel mágico",
		"field.entrenada":     "Entrenada",
		"field.habilidades":   "Habilidades",
		"field.description":   "Descripción",
		"role.maestro":        "Maestro",
		"role.cuidador":       "Cuidador",
		"login.heading":       "Inicia sesión",
		"login.submit":        "Entrar",
		"login.register":      "¿No tienes cuenta? Regístrate",
		"register.heading":    "Crea tu cuenta",
		"register.submit":     "Registrarse",
		"register.login":      "¿Ya tienes cuenta? Inicia sesión",
		"register.done":       "Cuenta creada. Ya puedes iniciar sesión.",
		"dashboard.welcome":   "Bienvenido",
		"dashboard.about":     "Sobre mí",
		"dashboard.creatures": "Mis criaturas",
		"profile.heading":     "Editar perfil",
		"profile.save":        "Guardar",
		"profile.updated":     "Perfil actualizado correctamente",
		"creatures.filter":    "Filtrar",
		"creatures.all":       "Todas",
		"creatures.heading":   "Mis criaturas",
		"creatures.back":      "Volver",
		"creatures.empty":     "Aún no tienes criaturas.",
		"creatures.new":       "Nueva criatura",
		"creatures.create":    "Crear",
		"creatures.delete":    "Eliminar",
		"yes":                 "Sí",
		"no":                  "No",
	},
	"en": {
		"app.title":           "The Sanctuary",
		"nav.logout":          "Log out",
		"field.name":          "Name",
		"field.email":         "Email",
		"field.password":      "Password",
		"field.role":          "Role",
		"field.nombre":        "Name",
		"field.especie":       "Species",
		"field.nivel":         "Magic level",
		"field.entrenada":     "Trained",
		"field.habilidades":   "Skills",
		"field.description":   "Description",
		"role.maestro":        "Master",
		"role.cuidador":       "Caretaker",
		"login.heading":       "Sign in",
		"login.submit":        "Sign in",
		"login.register":      "No account yet? Sign up",
		"register.heading":    "Create your account",
		"register.submit":     "Sign up",
		"register.login":      "Already registered? Sign in",
		"register.done":       "Account created. You can sign in now.",
		"dashboard.welcome":   "Welcome",
		"dashboard.about":     "About me",
		"dashboard.creatures": "My creatures",
		"profile.heading":     "Edit profile",
		"profile.save":        "Save",
		"profile.updated":     "Profile updated",
		"creatures.filter":    "Filter",
		"creatures.all":       "All",
		"creatures.heading":   "My creatures",
		"creatures.back":      "Back",
		"creatures.empty":     "You have no creatures yet.",
		"creatures.new":       "New creature",
		"creatures.create":    "Create",
		"creatures.delete":    "Delete",
		"yes":                 "Yes",
		"no":                  "No",
	},
}

func messagesFor(locale string) map[string]string {
	if m, ok := pageMessages[locale]; ok {
		return m
	}
	return pageMessages["es"]
}
