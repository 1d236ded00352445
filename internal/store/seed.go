package store

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/raidtracker/internal/dbx"
	"github.com/dmitrijs2005/raidtracker/internal/models"
	"github.com/dmitrijs2005/raidtracker/internal/repositories/steps"
	"github.com/dmitrijs2005/raidtracker/internal/repositories/wings"
)

type seedWing struct {
	wing  models.RaidWing
	steps []string
}

var defaultWings = []seedWing{
	{
		wing: models.RaidWing{
			Name:        "Spirit Vale (Wing 1)",
			Description: "The first raid wing in Guild Wars 2, featuring Vale Guardian, Gorseval, and Sabetha.",
			Bosses:      []string{"Vale Guardian", "Gorseval the Multifarious", "Sabetha the Saboteur"},
		},
		steps: []string{"Start", "Vale Guardian", "Spirit Woods", "Gorseval", "Sabetha"},
	},
	{
		wing: models.RaidWing{
			Name:        "Salvation Pass (Wing 2)",
			Description: "The second raid wing, featuring Slothasor, Bandit Trio, and Matthias Gabrel.",
			Bosses:      []string{"Slothasor", "Bandit Trio", "Matthias Gabrel"},
		},
		steps: []string{"Start", "Slothasor", "Bandit Trio", "Matthias Gabrel"},
	},
	{
		wing: models.RaidWing{
			Name:        "Stronghold of the Faithful (Wing 3)",
			Description: "The third raid wing, featuring Escort, Keep Construct, Twisted Castle, and Xera.",
			Bosses:      []string{"Escort", "Keep Construct", "Xera"},
		},
		steps: []string{"Start", "Escort", "Keep Construct", "Xera"},
	},
	{
		wing: models.RaidWing{
			Name:        "Bastion of the Penitent (Wing 4)",
			Description: "The fourth raid wing, featuring Cairn, Mursaat Overseer, Samarog, and Deimos.",
			Bosses:      []string{"Cairn the Indomitable", "Mursaat Overseer", "Samarog", "Deimos"},
		},
		steps: []string{"Start", "Cairn the Indomitable", "Mursaat Overseer", "Samarog", "Deimos"},
	},
	{
		wing: models.RaidWing{
			Name:        "Hall of Chains (Wing 5)",
			Description: "The fifth raid wing, featuring Soulless Horror, River of Souls, Statues of Grenth, and Dhuum.",
			Bosses:      []string{"Soulless Horror", "River of Souls", "Statues of Grenth", "Dhuum"},
		},
		steps: []string{"Start", "Soulless Horror", "River of Souls", "Statues of Grenth", "Dhuum"},
	},
	{
		wing: models.RaidWing{
			Name:        "Mythwright Gambit (Wing 6)",
			Description: "The sixth raid wing, featuring Conjured Amalgamate, Twin Largos, and Qadim.",
			Bosses:      []string{"Conjured Amalgamate", "Twin Largos", "Qadim"},
		},
		steps: []string{"Start", "Conjured Amalgamate", "Twin Largos", "Qadim"},
	},
	{
		wing: models.RaidWing{
			Name:        "The Key of Ahdashim (Wing 7)",
			Description: "The seventh raid wing, featuring Cardinal Adina, Cardinal Sabir, and Qadim the Peerless.",
			Bosses:      []string{"Cardinal Adina", "Cardinal Sabir", "Qadim the Peerless"},
		},
		steps: []string{"Start", "Cardinal Adina", "Cardinal Sabir", "Qadim the Peerless"},
	},
	{
		wing: models.RaidWing{
			Name:        "Mount Balrior (Wing 8)",
			Description: "The eighth raid wing, featuring Greer, Decima, and Ura.",
			Bosses:      []string{"Greer", "Decima", "Ura"},
		},
		steps: []string{"Start", "Greer", "Decima", "Ura"},
	},
}

// SeedDefaults inserts the default wing and step definitions when the wings
// collection is empty. Subsequent opens leave user-edited data alone.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	n, err := wings.NewSQLiteRepository(db).Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	return dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		wingRepo := wings.NewSQLiteRepository(tx)
		stepRepo := steps.NewSQLiteRepository(tx)

		for _, sw := range defaultWings {
			wingID, err := wingRepo.Create(ctx, &sw.wing)
			if err != nil {
				return err
			}
			for i, name := range sw.steps {
				step := &models.RaidStep{
					Name:       name,
					Position:   i,
					RaidWingID: wingID,
				}
				switch {
				case i == 0:
					step.Description = "Beginning of the raid"
				case i == len(sw.steps)-1:
					step.Description = "Final boss"
				}
				if _, err := stepRepo.Create(ctx, step); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
