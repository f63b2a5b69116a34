// Command seed populates the catalog with the launch data set and
// creates the default admin and demo accounts.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/ghosttier/arsenal-server/internal/auth"
	"github.com/ghosttier/arsenal-server/internal/catalog"
	"github.com/ghosttier/arsenal-server/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (default: ARSENAL_CONFIG env)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	if cfg == nil {
		cfg = &config.Config{}
	}

	mongoURI := cfg.Mongo.GetMongoURI()
	mongoDB := cfg.Mongo.GetDatabase()

	catalogRepo, err := catalog.NewMongoRepository(catalog.MongoCatalogConfig{
		URI:      mongoURI,
		Database: mongoDB,
	})
	if err != nil {
		log.Fatalf("❌ Failed to open catalog store: %v", err)
	}

	userRepo, err := auth.NewMongoUserRepo(auth.MongoConfig{
		URI:      mongoURI,
		Database: mongoDB,
	})
	if err != nil {
		log.Fatalf("❌ Failed to open user store: %v", err)
	}

	var weaponIDs []string
	for _, w := range seedWeapons() {
		created, err := catalogRepo.CreateWeapon(w)
		if err != nil {
			log.Fatalf("❌ Failed to create weapon %s: %v", w.Name, err)
		}
		weaponIDs = append(weaponIDs, created.ID)
	}
	log.Printf("✓ Inserted %d weapons", len(weaponIDs))

	var characterIDs []string
	for _, c := range seedCharacters() {
		created, err := catalogRepo.CreateCharacter(c)
		if err != nil {
			log.Fatalf("❌ Failed to create character %s: %v", c.Name, err)
		}
		characterIDs = append(characterIDs, created.ID)
	}
	log.Printf("✓ Inserted %d characters", len(characterIDs))

	// Admin account.
	adminEmail := envOr("ARSENAL_ADMIN_EMAIL", "admin@arsenal.local")
	adminPassword := envOr("ARSENAL_ADMIN_PASSWORD", "Admin@123456")
	adminHash, err := auth.HashPassword(adminPassword)
	if err != nil {
		log.Fatalf("❌ Failed to hash admin password: %v", err)
	}
	admin, err := userRepo.CreateUser("admin", adminEmail, adminHash, auth.RoleAdmin)
	if err != nil {
		log.Fatalf("❌ Failed to create admin: %v", err)
	}
	log.Printf("✓ Created admin user: %s", admin.Email)

	// Demo account with a pre-built loadout.
	demoHash, err := auth.HashPassword("Demo@12345")
	if err != nil {
		log.Fatalf("❌ Failed to hash demo password: %v", err)
	}
	demo, err := userRepo.CreateUser("GhostOperator", "demo@arsenal.local", demoHash, auth.RoleUser)
	if err != nil {
		log.Fatalf("❌ Failed to create demo user: %v", err)
	}
	for _, wid := range []string{weaponIDs[0], weaponIDs[2]} {
		if _, err := userRepo.AddLoadoutWeapon(demo.ID, wid); err != nil {
			log.Fatalf("❌ Failed to equip demo loadout: %v", err)
		}
	}
	if _, err := userRepo.SetSelectedCharacter(demo.ID, characterIDs[1]); err != nil {
		log.Fatalf("❌ Failed to select demo character: %v", err)
	}
	log.Printf("✓ Created demo user: %s / Demo@12345", demo.Email)

	log.Println("🎉 Database seeded successfully")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func seedWeapons() []*catalog.Weapon {
	return []*catalog.Weapon{
		{
			Name: "Locus — Neptune", Subtitle: "Sniper Rifle · Bolt-Action",
			Category: catalog.CategorySniper, Tier: catalog.TierLegendary,
			Stats:       catalog.WeaponStats{Damage: 94, Range: 88, Accuracy: 78, FireRate: 32, Mobility: 40, Control: 65},
			Description: "The Neptune variant brings aquatic camouflage and enhanced barrel technology for extreme long-range elimination.",
			Lore:        "Forged in the deep-sea labs of Nautilus Corp, this weapon has seen more action at 1000 yards than most guns see in a lifetime.",
			ModelColor:  "#ffd700", AccentColor: "#ffd700", UnlockLevel: 50,
			Tags: []string{"long-range", "one-shot", "bolt-action"}, IsActive: true,
		},
		{
			Name: "Rytec AMR — Nautilus", Subtitle: "Anti-Material · Semi-Auto",
			Category: catalog.CategorySniper, Tier: catalog.TierMythic,
			Stats:       catalog.WeaponStats{Damage: 98, Range: 72, Accuracy: 65, FireRate: 45, Mobility: 28, Control: 55},
			Description: "The Nautilus mythology comes alive in this devastating anti-material rifle capable of penetrating vehicle armor.",
			Lore:        "Used by Ghost Tier operatives in classified operations. The Nautilus rounds can pierce six inches of hardened steel.",
			ModelColor:  "#ff6b9d", AccentColor: "#ff6b9d", UnlockLevel: 100,
			Tags: []string{"anti-material", "vehicle-damage", "mythic"}, IsActive: true,
		},
		{
			Name: "DL Q33 — Phantom", Subtitle: "Marksman · Long-Range",
			Category: catalog.CategoryMarksman, Tier: catalog.TierEpic,
			Stats:       catalog.WeaponStats{Damage: 86, Range: 91, Accuracy: 83, FireRate: 40, Mobility: 55, Control: 70},
			Description: "A precise marksman rifle with ghost-tech suppressor technology. Silent. Deadly. Untraceable.",
			Lore:        "The Phantom variant was developed for black ops missions requiring zero acoustic signature.",
			ModelColor:  "#9f7fff", AccentColor: "#9f7fff", UnlockLevel: 30,
			Tags: []string{"suppressed", "marksman", "high-accuracy"}, IsActive: true,
		},
		{
			Name: "AK117 — Dragonfyre", Subtitle: "Assault Rifle · Full-Auto",
			Category: catalog.CategoryAssault, Tier: catalog.TierLegendary,
			Stats:       catalog.WeaponStats{Damage: 72, Range: 68, Accuracy: 74, FireRate: 85, Mobility: 65, Control: 60},
			Description: "The Dragonfyre AK117 combines classic Soviet engineering with modern thermal-imaging sights.",
			Lore:        "Seized from a weapons dealer in Urzikstan, modified in the field and certified for Ghost Tier use.",
			ModelColor:  "#ff6b35", AccentColor: "#ffd700", UnlockLevel: 20,
			Tags: []string{"full-auto", "versatile", "mid-range"}, IsActive: true,
		},
		{
			Name: "MP5 — Spectre", Subtitle: "SMG · Close Quarter",
			Category: catalog.CategorySMG, Tier: catalog.TierEpic,
			Stats:       catalog.WeaponStats{Damage: 58, Range: 40, Accuracy: 68, FireRate: 95, Mobility: 88, Control: 72},
			Description: "The Spectre SMG is engineered for tight corridors and rapid room-clearing operations.",
			Lore:        "Preferred by Spectre unit operators in urban warfare scenarios across Eastern Europe.",
			ModelColor:  "#9f7fff", AccentColor: "#00e5ff", UnlockLevel: 10,
			Tags: []string{"fast", "cqb", "high-rpm"}, IsActive: true,
		},
		{
			Name: "Striker — Terminus", Subtitle: "Shotgun · Pump-Action",
			Category: catalog.CategoryShotgun, Tier: catalog.TierLegendary,
			Stats:       catalog.WeaponStats{Damage: 99, Range: 18, Accuracy: 45, FireRate: 22, Mobility: 58, Control: 50},
			Description: "The Terminus Striker delivers unmatched close-range devastation. One shot ends battles.",
			Lore:        "Named by operators in memory of enemies who never saw it coming. The Terminus has zero mercy.",
			ModelColor:  "#ffd700", AccentColor: "#ff6b35", UnlockLevel: 60,
			Tags: []string{"one-shot", "close-range", "pump"}, IsActive: true,
		},
	}
}

func seedCharacters() []*catalog.Character {
	return []*catalog.Character{
		{
			Name: "Manta", Codename: "MANTA-7", Role: "Combat Specialist",
			Faction: catalog.FactionGhost, Tier: catalog.TierLegendary,
			Description: "Elite underwater combat specialist and infiltration expert. Manta specializes in amphibious operations and aquatic stealth.",
			Lore:        "Originally recruited from the Typhoon Special Forces unit, Manta has completed 147 classified missions with a 100% extraction rate.",
			Abilities: []catalog.Ability{
				{Name: "Aqua Shield", Description: "Deploy a nanite water shield absorbing 300 damage", Icon: "🛡️"},
				{Name: "Depth Charge", Description: "Throw a devastating proximity mine with AoE damage", Icon: "💣"},
				{Name: "Sonar Pulse", Description: "Reveal all enemies within 40m through walls", Icon: "📡"},
			},
			Stats:      catalog.CharacterStats{Health: 75, Speed: 88, Stealth: 92, Strength: 70},
			ModelColor: "#00e5ff", AccentColor: "#00b8cc", UnlockLevel: 20, IsActive: true,
		},
		{
			Name: "Ghost", Codename: "GHOST-1", Role: "Shadow Operative",
			Faction: catalog.FactionGhost, Tier: catalog.TierMythic,
			Description: "The legendary operator who has haunted enemy intelligence for a decade. Ghost operates in total silence.",
			Lore:        "Ghost's real identity remains classified at the highest levels. Multiple enemy factions believe they have eliminated Ghost — all were wrong.",
			Abilities: []catalog.Ability{
				{Name: "Phantom Cloak", Description: "Become nearly invisible for 8 seconds", Icon: "👻"},
				{Name: "Skull Grenade", Description: "Deploy a fear grenade that causes enemies to flee", Icon: "💀"},
				{Name: "Death Mark", Description: "Mark an enemy — deal 50% bonus damage to them", Icon: "🎯"},
			},
			Stats:      catalog.CharacterStats{Health: 70, Speed: 85, Stealth: 99, Strength: 80},
			ModelColor: "#4a7a8a", AccentColor: "#00e5ff", UnlockLevel: 80, IsActive: true,
		},
		{
			Name: "Scyla", Codename: "SCYLA-9", Role: "Cyborg Infiltrator",
			Faction: catalog.FactionPhantom, Tier: catalog.TierEpic,
			Description: "A next-generation cybernetic operative enhanced with experimental neural implants and sub-dermal armor plating.",
			Lore:        "After a catastrophic mission left Scyla at 20% organic mass, Project SCYLA rebuilt her into the most technologically advanced operative alive.",
			Abilities: []catalog.Ability{
				{Name: "Neural Hack", Description: "Temporarily disable enemy tech and vehicles nearby", Icon: "⚡"},
				{Name: "Nano Repair", Description: "Self-repair 150 health over 5 seconds", Icon: "🔧"},
				{Name: "Optics Override", Description: "See through smoke and all visual obstructions for 6s", Icon: "👁️"},
			},
			Stats:      catalog.CharacterStats{Health: 90, Speed: 70, Stealth: 75, Strength: 85},
			ModelColor: "#c0d8ff", AccentColor: "#9f7fff", UnlockLevel: 40, IsActive: true,
		},
		{
			Name: "Makarov", Codename: "MAKAROV-X", Role: "Assault Vanguard",
			Faction: catalog.FactionMakarov, Tier: catalog.TierLegendary,
			Description: "Ruthless and strategic. Makarov leads from the front, using psychological warfare as much as firepower.",
			Lore:        "The ghost of Ultranationalism. Makarov has orchestrated three major geopolitical crises and remains three steps ahead of all pursuit.",
			Abilities: []catalog.Ability{
				{Name: "Iron Will", Description: "Reduce incoming damage by 40% for 10 seconds", Icon: "⚔️"},
				{Name: "Tactical Nuke Threat", Description: "Boost all ally damage by 25% for 15 seconds", Icon: "☢️"},
				{Name: "Wolf Pack", Description: "Call in a 3-man AI support squad", Icon: "🐺"},
			},
			Stats:      catalog.CharacterStats{Health: 95, Speed: 60, Stealth: 45, Strength: 99},
			ModelColor: "#ff3c3c", AccentColor: "#ffd700", UnlockLevel: 70, IsActive: true,
		},
	}
}
