package integration

import (
	"strings"
	"testing"

	"github.com/Conceptual-Machines/sfx-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testURL = "https://cdn.soundraw.io/abc.m4a"

func TestRenderNoEngine(t *testing.T) {
	code, ok := Render(models.EngineNone, testURL, "sword_swing")
	assert.False(t, ok)
	assert.Empty(t, code)

	_, ok = Render(models.Engine("cryengine"), testURL, "sword_swing")
	assert.False(t, ok)
}

func TestRenderAllEngines(t *testing.T) {
	tests := []struct {
		engine   models.Engine
		contains []string
	}{
		{
			engine: models.EngineUnreal,
			contains: []string{
				"// Unreal Engine 5 - SFX Integration",
				"// Download audio from: " + testURL,
				`LOAD_ASSET("/Game/Audio/Footsteps/sword_swing")`,
				"UGameplayStatics::PlaySoundAtLocation(",
			},
		},
		{
			engine: models.EngineUnity,
			contains: []string{
				"public class SFXManager : MonoBehaviour",
				"private AudioClip swordswingClip;",
				"public void Playswordswing()",
				"public void Playswordswing(float volume = 1.0f)",
				"public void PlayRandomPitch()",
			},
		},
		{
			engine: models.EngineGodot,
			contains: []string{
				"extends Node",
				"func play_sword_swing():",
				"func play_3d_sword_swing(position: Vector3):",
				"func play_with_volume_sword_swing(volume_db: float = 0.0):",
				`load("res://audio/sword_swing.m4a")`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.engine), func(t *testing.T) {
			code, ok := Render(tt.engine, testURL, "sword_swing")
			require.True(t, ok)
			for _, want := range tt.contains {
				assert.Contains(t, code, want)
			}
			assert.False(t, strings.HasSuffix(code, "\n"))
			assert.NotContains(t, code, "{{")
		})
	}
}

func TestIdentifiers(t *testing.T) {
	assert.Equal(t, "SwordSwing", UnityIdentifier("Sword Swing!"))
	assert.Equal(t, UnityIdentifier("Sword Swing!"), UnityIdentifier("Sword Swing!"))
	assert.Equal(t, "laserblast", UnityIdentifier("laser_blast_2"))

	assert.Equal(t, "sword_swing_", GodotIdentifier("Sword Swing!"))
	assert.Equal(t, "laser_blast_2", GodotIdentifier("laser_blast_2"))
}

func TestRenderIsDeterministic(t *testing.T) {
	first, _ := Render(models.EngineUnity, testURL, "Sword Swing!")
	second, _ := Render(models.EngineUnity, testURL, "Sword Swing!")
	assert.Equal(t, first, second)
	assert.Contains(t, first, "SwordSwingClip")
}
