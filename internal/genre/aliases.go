package genre

// Aliases maps common variations, including English names, to catalogue slugs.
var Aliases = map[string]string{
	"fantasy":         "fantasia",
	"fantasia-epica":  "fantasia",
	"alta-fantasia":   "fantasia",
	"sci-fi":          "ciencia-ficcion",
	"scifi":           "ciencia-ficcion",
	"science-fiction": "ciencia-ficcion",
	"cf":              "ciencia-ficcion",
	"horror":          "terror",
	"mystery":         "misterio",
	"thriller":        "misterio",
	"suspense":        "misterio",
	"romantica":       "romance",
	"adventure":       "aventura",
	"comedy":          "comedia",
	"humor":           "comedia",
	"action":          "accion",
	"historical":      "historica",
	"historia":        "historica",
}
