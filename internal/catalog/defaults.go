package catalog

// DefaultGrains is the built-in catalog used when no catalog file is configured.
func DefaultGrains() []Grain {
	return []Grain{
		{ID: "1", NameEN: "Wheat", NameUA: "Пшениця", Category: 1, Moisture: "12%", Protein: "14%", Gluten: "28%", TestWeight: "780 г/л", Active: true},
		{ID: "2", NameEN: "Wheat", NameUA: "Пшениця", Category: 2, Moisture: "14%", Protein: "12%", Gluten: "25%", TestWeight: "760 г/л", Active: true},
		{ID: "3", NameEN: "Wheat", NameUA: "Пшениця", Category: 3, Moisture: "15%", Protein: "11%", Gluten: "20%", TestWeight: "740 г/л", Active: true},
		{ID: "4", NameEN: "Corn", NameUA: "Кукурудза", Category: 1, Moisture: "13%", Protein: "9%", Gluten: "N/A", TestWeight: "720 г/л", Active: true},
		{ID: "5", NameEN: "Corn", NameUA: "Кукурудза", Category: 2, Moisture: "14%", Protein: "8.5%", Gluten: "N/A", TestWeight: "700 г/л", Active: true},
		{ID: "6", NameEN: "Barley", NameUA: "Ячмінь", Category: 1, Moisture: "12%", Protein: "11%", Gluten: "N/A", TestWeight: "640 г/л", Active: true},
		{ID: "7", NameEN: "Sunflower", NameUA: "Соняшник", Category: 1, Moisture: "7%", Protein: "16%", Gluten: "N/A", TestWeight: "N/A", Active: true},
		{ID: "8", NameEN: "Oats", NameUA: "Овес", Category: 1, Moisture: "13%", Protein: "10%", Gluten: "N/A", TestWeight: "500 г/л", Active: true},
		{ID: "9", NameEN: "Rapeseed", NameUA: "Ріпак", Category: 1, Moisture: "9%", Protein: "20%", Gluten: "N/A", TestWeight: "N/A", Active: true},
	}
}

// Default builds the built-in catalog
func Default() *Static {
	c, err := NewStatic(DefaultGrains()...)
	if err != nil {
		panic(err) // built-in data is fixed
	}
	return c
}
