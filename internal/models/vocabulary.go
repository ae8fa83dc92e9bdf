package models

import "fmt"

// Mood is a Soundraw mood accepted for sound effects.
type Mood string

const (
	MoodDark          Mood = "Dark"
	MoodEpic          Mood = "Epic"
	MoodHappy         Mood = "Happy"
	MoodScary         Mood = "Scary"
	MoodFunnyAndWeird Mood = "Funny & Weird"
	MoodPeaceful      Mood = "Peaceful"
	MoodSuspense      Mood = "Suspense"
	MoodTense         Mood = "Tense"
)

// Moods lists the mood vocabulary in prompt order.
var Moods = []Mood{
	MoodDark, MoodEpic, MoodHappy, MoodScary,
	MoodFunnyAndWeird, MoodPeaceful, MoodSuspense, MoodTense,
}

func (m Mood) Valid() bool {
	switch m {
	case MoodDark, MoodEpic, MoodHappy, MoodScary,
		MoodFunnyAndWeird, MoodPeaceful, MoodSuspense, MoodTense:
		return true
	}
	return false
}

// Genre is a Soundraw genre accepted for sound effects.
type Genre string

const (
	GenreOrchestra   Genre = "Orchestra"
	GenreElectronica Genre = "Electronica"
	GenreAmbient     Genre = "Ambient"
	GenreRock        Genre = "Rock"
	GenreAcoustic    Genre = "Acoustic"
)

var Genres = []Genre{GenreOrchestra, GenreElectronica, GenreAmbient, GenreRock, GenreAcoustic}

func (g Genre) Valid() bool {
	switch g {
	case GenreOrchestra, GenreElectronica, GenreAmbient, GenreRock, GenreAcoustic:
		return true
	}
	return false
}

// Theme is a Soundraw theme.
type Theme string

const (
	ThemeGaming          Theme = "Gaming"
	ThemeCinematic       Theme = "Cinematic"
	ThemeNature          Theme = "Nature"
	ThemeTechnology      Theme = "Technology"
	ThemeSportsAndAction Theme = "Sports & Action"
)

var Themes = []Theme{ThemeGaming, ThemeCinematic, ThemeNature, ThemeTechnology, ThemeSportsAndAction}

func (t Theme) Valid() bool {
	switch t {
	case ThemeGaming, ThemeCinematic, ThemeNature, ThemeTechnology, ThemeSportsAndAction:
		return true
	}
	return false
}

// Defaults substituted when sanitization leaves a set empty.
const (
	DefaultMood  = MoodEpic
	DefaultGenre = GenreElectronica
	DefaultTheme = ThemeGaming
)

// Category is a hint describing the kind of sound effect.
type Category string

const (
	CategoryCombat     Category = "combat"
	CategoryUI         Category = "ui"
	CategoryAmbient    Category = "ambient"
	CategoryNature     Category = "nature"
	CategoryMechanical Category = "mechanical"
	CategoryMagical    Category = "magical"
	CategoryFootsteps  Category = "footsteps"
	CategoryImpacts    Category = "impacts"
	CategoryVehicles   Category = "vehicles"
	CategoryWeather    Category = "weather"
)

var Categories = []Category{
	CategoryCombat, CategoryUI, CategoryAmbient, CategoryNature, CategoryMechanical,
	CategoryMagical, CategoryFootsteps, CategoryImpacts, CategoryVehicles, CategoryWeather,
}

func (c Category) Valid() bool {
	switch c {
	case CategoryCombat, CategoryUI, CategoryAmbient, CategoryNature, CategoryMechanical,
		CategoryMagical, CategoryFootsteps, CategoryImpacts, CategoryVehicles, CategoryWeather:
		return true
	}
	return false
}

type Intensity string

const (
	IntensityLow    Intensity = "low"
	IntensityMedium Intensity = "medium"
	IntensityHigh   Intensity = "high"
)

var Intensities = []Intensity{IntensityLow, IntensityMedium, IntensityHigh}

func (i Intensity) Valid() bool {
	switch i {
	case IntensityLow, IntensityMedium, IntensityHigh:
		return true
	}
	return false
}

// Engine selects the integration snippet. EngineNone means no snippet.
type Engine string

const (
	EngineNone   Engine = ""
	EngineUnreal Engine = "unreal"
	EngineUnity  Engine = "unity"
	EngineGodot  Engine = "godot"
)

var Engines = []Engine{EngineUnreal, EngineUnity, EngineGodot}

func (e Engine) Valid() bool {
	switch e {
	case EngineUnreal, EngineUnity, EngineGodot:
		return true
	}
	return false
}

type FileFormat string

const (
	FormatM4A FileFormat = "m4a"
	FormatMP3 FileFormat = "mp3"
	FormatWAV FileFormat = "wav"

	DefaultFileFormat = FormatM4A
)

var FileFormats = []FileFormat{FormatM4A, FormatMP3, FormatWAV}

func (f FileFormat) Valid() bool {
	switch f {
	case FormatM4A, FormatMP3, FormatWAV:
		return true
	}
	return false
}

// ContentType returns the MIME type used when archiving audio.
func (f FileFormat) ContentType() string {
	switch f {
	case FormatMP3:
		return "audio/mpeg"
	case FormatWAV:
		return "audio/wav"
	case FormatM4A:
		return "audio/mp4"
	}
	return "application/octet-stream"
}

// Tempo bands: low (<100 bpm), normal (100-125 bpm), high (>125 bpm).
type Tempo string

const (
	TempoLow    Tempo = "low"
	TempoNormal Tempo = "normal"
	TempoHigh   Tempo = "high"

	DefaultTempo = TempoNormal
)

var Tempos = []Tempo{TempoLow, TempoNormal, TempoHigh}

func (t Tempo) Valid() bool {
	switch t {
	case TempoLow, TempoNormal, TempoHigh:
		return true
	}
	return false
}

type EnergyProfile string

const (
	EnergyBuilding EnergyProfile = "building"
	EnergySteady   EnergyProfile = "steady"
	EnergyClimax   EnergyProfile = "climax"
	EnergyAmbient  EnergyProfile = "ambient"
	EnergyMuted    EnergyProfile = "muted"

	DefaultEnergy = EnergySteady
)

var EnergyProfiles = []EnergyProfile{EnergyBuilding, EnergySteady, EnergyClimax, EnergyAmbient, EnergyMuted}

func (e EnergyProfile) Valid() bool {
	switch e {
	case EnergyBuilding, EnergySteady, EnergyClimax, EnergyAmbient, EnergyMuted:
		return true
	}
	return false
}

// VariationType is accepted by the Soundraw "similar" endpoint.
type VariationType string

const (
	VariationSimilar VariationType = "similar"
	VariationSofter  VariationType = "softer"
	VariationIntense VariationType = "intense"
	VariationReverse VariationType = "reverse"
)

var VariationTypes = []VariationType{VariationSimilar, VariationSofter, VariationIntense, VariationReverse}

func (v VariationType) Valid() bool {
	switch v {
	case VariationSimilar, VariationSofter, VariationIntense, VariationReverse:
		return true
	}
	return false
}

// JobStatus is the remote composition job state. Only Soundraw mutates it.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobDone       JobStatus = "done"
	JobFailed     JobStatus = "failed"
)

// Terminal reports whether polling can stop on this status.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobDone, JobFailed:
		return true
	case JobPending, JobProcessing:
		return false
	}
	return false
}

// Strings converts a slice of string-backed enum values for prompts and schemas.
func Strings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func invalidEnum[T ~string](field string, value T, allowed []T) error {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("invalid value %q (allowed: %v)", string(value), Strings(allowed)),
	}
}
