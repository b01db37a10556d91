package site

type Value struct {
	Title string
	Desc  string
}

type Stat struct {
	Value string
	Label string
}

type NavLink struct {
	Path  string
	Label string
}

var navLinks = []NavLink{
	{"/", "Inicio"},
	{"/catalogo", "Catálogo"},
	{"/nosotros", "Nosotros"},
	{"/contacto", "Contacto"},
}

var heroStats = []Stat{
	{"+500", "Piezas únicas"},
	{"+8", "Colecciones"},
	{"+1.200", "Hogares transformados"},
}

type aboutCopy struct {
	Eyebrow     string
	Title       string
	TitleEm     string
	Subtitle    string
	Values      []Value
	StoryTitle  string
	StoryP1     string
	StoryP2     string
	Quote       string
	QuoteAuthor string
	Stats       []Stat
}

var about = aboutCopy{
	Eyebrow:  "Nuestra historia",
	Title:    "Transformamos espacios,",
	TitleEm:  "creamos legados",
	Subtitle: "Somos una casa de decoración especializada en piezas de diseño y artesanía de autor. Desde 2015 asesoramos a quienes buscan lo extraordinario para sus hogares.",
	Values: []Value{
		{"Curaduría de autor", "Cada pieza de nuestra colección es seleccionada personalmente por nuestro equipo, garantizando que solo lo excepcional llegue a tu hogar."},
		{"Materiales nobles", "Priorizamos maderas nativas, textiles naturales y cerámicas artesanales. Belleza que respeta el origen de cada material."},
		{"Excelencia garantizada", "Trabajamos con los mejores artesanos nacionales e importadores especializados. Calidad que no admite términos medios."},
		{"Asesoría exclusiva", "Nuestro equipo te acompaña desde la primera consulta hasta la entrega, con atención dedicada y sin apuros."},
	},
	StoryTitle:  "Más de una década vistiendo los mejores hogares",
	StoryP1:     "Lo que comenzó como una pequeña galería de diseño en Providencia es hoy la primera elección de los interioristas más reconocidos de Chile. Fundada por Camila y Sofía, quienes viajan cada temporada a ferias de diseño en Europa y América Latina para traer lo más exclusivo.",
	StoryP2:     "Creemos que decorar no es un gasto sino una inversión en bienestar. Un espacio cuidadosamente compuesto eleva la calidad de vida, el ánimo y la identidad de quienes lo habitan.",
	Quote:       "Cada rincón de tu hogar es una oportunidad para ser extraordinario.",
	QuoteAuthor: "Camila & Sofía, fundadoras",
	Stats: []Stat{
		{"+1.200", "clientes satisfechos"},
		{"+500", "piezas únicas"},
		{"10+", "años de excelencia"},
	},
}

var sortOptions = []NavLink{
	{"featured", "Destacados"},
	{"name-asc", "Nombre A-Z"},
	{"name-desc", "Nombre Z-A"},
	{"price-asc", "Menor precio"},
	{"price-desc", "Mayor precio"},
}
