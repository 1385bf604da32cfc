// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package content

import "github.com/tomtom215/flyfitness/internal/models"

var sampleContent = map[models.ContentKind][]Input{
	models.ContentTrainer: {
		{Title: "Ravi Sharma", Body: "Strength and conditioning coach, 10 years on the floor.",
			Attributes: map[string]string{"specialty": "Powerlifting", "experience": "10 years"}},
		{Title: "Meera Iyer", Body: "Certified yoga and mobility instructor.",
			Attributes: map[string]string{"specialty": "Yoga", "experience": "7 years"}},
		{Title: "Arjun Patel", Body: "HIIT and fat loss programs for busy schedules.",
			Attributes: map[string]string{"specialty": "HIIT", "experience": "5 years"}},
	},
	models.ContentClass: {
		{Title: "Morning Strength", Body: "Compound lifts with coached technique.",
			Attributes: map[string]string{"schedule": "Mon/Wed/Fri 06:30", "duration": "60 min"}},
		{Title: "Power Yoga", Body: "Flexibility, balance and breath work.",
			Attributes: map[string]string{"schedule": "Tue/Thu 18:00", "duration": "45 min"}},
		{Title: "Spin & Burn", Body: "High energy indoor cycling.",
			Attributes: map[string]string{"schedule": "Sat 09:00", "duration": "40 min"}},
	},
	models.ContentTestimonial: {
		{Title: "Priya", Body: "Lost 12 kg in six months and never felt stronger."},
		{Title: "Karan", Body: "The trainers actually watch your form. Hit my first 150 kg deadlift."},
	},
	models.ContentMessage: {
		{Title: "Consistency beats intensity."},
		{Title: "The only bad workout is the one that didn't happen."},
		{Title: "Strong today, stronger tomorrow."},
	},
}
