// Package catalog loads the static project showcase, either from YAML files
// or from the built-in default list.
package catalog

import "github.com/terra-clan/portfolio/internal/models"

// Default returns the built-in showcase
func Default() []models.Project {
	return []models.Project{
		{
			ID:           1,
			Title:        "Data Structure Course Project",
			Description:  "This course focuses on organizing and managing data efficiently using structures such as arrays, linked lists, stacks, queues, trees, and graphs. It builds problem-solving and analytical thinking skills by teaching how to design and implement algorithms for storing, retrieving, and processing data effectively.",
			Image:        "assets/DataStructures.jpeg",
			Technologies: []string{"Problem-solving", "Algorithm design", "Java"},
			Category:     "academic",
			Complexity:   models.ComplexityIntermediate,
			Date:         models.MustParseDate("2024-01-15"),
			Links:        models.Links{Demo: "#", GitHub: "#"},
		},
		{
			ID:           2,
			Title:        "Data Science Course Project",
			Description:  "This project introduced the fundamentals of collecting, cleaning, and analyzing data to extract meaningful insights. It emphasized applying basic statistical methods and visualization techniques to understand patterns and support decision-making.",
			Image:        "assets/DataSience.jpeg",
			Technologies: []string{"Python", "Data cleaning", "Statistical analysis", "Problem-solving"},
			Category:     "academic",
			Complexity:   models.ComplexityBeginner,
			Date:         models.MustParseDate("2024-03-20"),
			Links:        models.Links{Demo: "#", GitHub: "#"},
		},
		{
			ID:           3,
			Title:        "Software Engineering Course Project",
			Description:  "This project focused on applying software development principles to design and implement a functional application. It covered the full development cycle, including requirement analysis, system design, coding, testing, and documentation, with an emphasis on teamwork and practical problem-solving.",
			Image:        "assets/software.jpeg",
			Technologies: []string{"Requirement gathering", "Software design", "Programming and debugging", "Testing and quality assurance"},
			Category:     "academic",
			Complexity:   models.ComplexityAdvanced,
			Date:         models.MustParseDate("2024-05-10"),
			Links:        models.Links{Demo: "#", GitHub: "#"},
		},
		{
			ID:           4,
			Title:        "Personal Portfolio Website",
			Description:  "A responsive portfolio website showcasing my projects and skills. Built with HTML, CSS, and JavaScript with dark/light mode toggle and smooth animations.",
			Image:        "assets/portfolioPic.png",
			Technologies: []string{"HTML", "CSS", "JavaScript", "UI Design"},
			Category:     "web",
			Complexity:   models.ComplexityIntermediate,
			Date:         models.MustParseDate("2024-06-01"),
			Links:        models.Links{Demo: "#", GitHub: "#"},
		},
	}
}
