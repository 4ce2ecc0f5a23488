package item

// Seed returns the starter collection used when no snapshot exists yet.
func Seed(kind Kind) []Item {
	if kind == KindAdventure {
		return []Item{
			{
				ID:            "1",
				Title:         "Stelvio Pass",
				Description:   "The legendary 48 hairpins of the Italian Alps.",
				SourceType:    SourceManual,
				SubItems:      []string{"Bormio", "Stelvio Pass", "Prato allo Stelvio"},
				Steps:         []string{"Check the brakes.", "Watch for cyclists in the hairpins.", "Have a coffee at the summit."},
				DistanceKm:    25,
				DurationHours: 1,
				Difficulty:    "expert",
				Tags:          []string{"alps", "hairpins", "italy"},
				Rating:        5,
			},
			{
				ID:            "2",
				Title:         "Sumava Loop",
				Description:   "Quiet forest roads along the Vltava headwaters.",
				SourceType:    SourceManual,
				SubItems:      []string{"Vimperk", "Kvilda", "Modrava", "Zelezna Ruda"},
				Steps:         []string{"Fuel up in Vimperk.", "Expect gravel after Modrava."},
				DistanceKm:    140,
				DurationHours: 3.5,
				Difficulty:    "easy",
				Tags:          []string{"forest", "czechia"},
				Rating:        4,
			},
		}
	}

	return []Item{
		{
			ID:          "1",
			Title:       "Spaghetti Carbonara",
			Description: "Classic Italian pasta with an egg based sauce, pancetta and parmesan.",
			SourceType:  SourceManual,
			SubItems:    []string{"200g spaghetti", "100g pancetta", "2 large eggs", "50g pecorino", "50g parmesan", "2 cloves garlic", "Black pepper"},
			Steps: []string{
				"Cook the spaghetti according to the package (8-10 minutes).",
				"Fry the pancetta and garlic until translucent.",
				"Whisk the eggs with cheese and pepper.",
				"Toss the hot pasta with the pancetta, take off the heat and stir in the egg mixture.",
			},
			PrepMinutes: 10,
			CookMinutes: 15,
			Servings:    2,
			Tags:        []string{"pasta", "italian", "classic"},
			Rating:      4,
		},
		{
			ID:          "2",
			Title:       "Chicken Tikka Masala",
			Description: "Roasted marinated chicken in a creamy spiced curry sauce.",
			SourceType:  SourceManual,
			SubItems:    []string{"500g chicken breast", "1 cup yogurt", "1 tbsp lemon juice", "2 tsp cumin", "2 tsp paprika", "1 cup tomato puree", "1 cup cream"},
			Steps: []string{
				"Cube the chicken and marinate in yogurt, lemon and spices for an hour.",
				"Prepare the masala sauce.",
				"Combine chicken and sauce and simmer for 25 minutes.",
			},
			PrepMinutes: 20,
			CookMinutes: 30,
			Servings:    4,
			Tags:        []string{"curry", "indian", "chicken"},
			Rating:      4,
		},
		{
			ID:          "3",
			Title:       "Beef Goulash",
			Description: "Thick beef shank stew with onion and paprika.",
			SourceType:  SourceManual,
			SubItems:    []string{"800g beef shank", "4 large onions", "3 tbsp lard", "3 tbsp sweet paprika", "Marjoram, caraway, salt, pepper", "2 cloves garlic"},
			Steps: []string{
				"Brown the onions in lard.",
				"Add paprika and the cubed beef.",
				"Season, cover with water and simmer for at least 2 hours.",
			},
			PrepMinutes: 25,
			CookMinutes: 150,
			Servings:    4,
			Tags:        []string{"czech", "beef", "stew"},
			Rating:      3,
		},
		{
			ID:          "4",
			Title:       "Potato Pancakes",
			Description: "Crispy grated potato pancakes with garlic and marjoram.",
			SourceType:  SourceManual,
			SubItems:    []string{"1kg potatoes", "2 eggs", "3 cloves garlic", "1 tsp marjoram", "Flour as needed", "Lard for frying"},
			Steps: []string{
				"Grate the potatoes and squeeze out the water.",
				"Mix with eggs, garlic, marjoram and flour.",
				"Fry thin pancakes until golden, about 4 minutes per side.",
			},
			PrepMinutes: 20,
			CookMinutes: 20,
			Servings:    4,
			Tags:        []string{"czech", "potatoes", "vegetarian"},
			Rating:      3,
		},
	}
}
