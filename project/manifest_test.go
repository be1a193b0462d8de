package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseManifestAllFields(t *testing.T) {
	s := `
[content]
name = "ExampleMod"
description = "Short mod description"
version = "0.9.0"
authors = ["Rip Van Winkle"]
game_version = "4.04"
scripts_root = "./content/scripts"

[dependencies]
content0 = { path = "../Witcher 3/content/content0" }
shared_utils = true
`

	manifest, err := ParseManifest(s)
	require.NoError(t, err)

	assert.Equal(t, "ExampleMod", manifest.Content.Name)
	assert.Equal(t, "Short mod description", manifest.Content.Description)
	require.NotNil(t, manifest.Content.Version)
	assert.Equal(t, "0.9.0", manifest.Content.Version.String())
	assert.Equal(t, []string{"Rip Van Winkle"}, manifest.Content.Authors)
	assert.Equal(t, "4.04", manifest.Content.GameVersion)
	assert.Equal(t, "./content/scripts", manifest.Content.ScriptsRoot)

	require.Len(t, manifest.Dependencies, 2)

	content0 := manifest.Dependencies[0]
	assert.Equal(t, "content0", content0.Name)
	assert.Equal(t, DependencyValue{Path: "../Witcher 3/content/content0"}, content0.Value)
	assert.Equal(t, uint32(10), content0.NameRange.Start.Line)
	assert.Equal(t, uint32(0), content0.NameRange.Start.Character)
	assert.Equal(t, uint32(8), content0.NameRange.End.Character)

	sharedUtils := manifest.Dependencies[1]
	assert.Equal(t, "shared_utils", sharedUtils.Name)
	assert.Equal(t, DependencyValue{FromRepo: true, Active: true}, sharedUtils.Value)
	assert.Equal(t, uint32(11), sharedUtils.NameRange.Start.Line)
}

func TestParseManifestOptionalFields(t *testing.T) {
	s := `
[content]
name = "ExampleMod"
version = "1.0.0"
game_version = "4.04"

[dependencies]
`

	manifest, err := ParseManifest(s)
	require.NoError(t, err)

	assert.Empty(t, manifest.Content.Description)
	assert.Nil(t, manifest.Content.Authors)
	assert.Empty(t, manifest.Content.ScriptsRoot)
	assert.Empty(t, manifest.Dependencies)
}

func TestParseManifestInvalidName(t *testing.T) {
	s := `
[content]
name = "123bad"
version = "1.0.0"
game_version = "4.04"
`

	_, err := ParseManifest(s)
	require.Error(t, err)

	var manifestErr *ManifestError
	require.ErrorAs(t, err, &manifestErr)
	assert.Equal(t, uint32(2), manifestErr.Range.Start.Line)
}

func TestParseManifestInvalidVersion(t *testing.T) {
	s := `
[content]
name = "Mod"
version = "not-a-version"
game_version = "4.04"
`

	_, err := ParseManifest(s)
	var manifestErr *ManifestError
	require.ErrorAs(t, err, &manifestErr)
	assert.Contains(t, manifestErr.Msg, "semantic versioning")
}

func TestParseManifestMalformedToml(t *testing.T) {
	_, err := ParseManifest("[content\nname = ")
	var manifestErr *ManifestError
	require.ErrorAs(t, err, &manifestErr)
}

func TestParseManifestInactiveDependency(t *testing.T) {
	s := `
[content]
name = "Mod"
version = "1.0.0"
game_version = "4.04"

[dependencies]
disabled_dep = false
`

	manifest, err := ParseManifest(s)
	require.NoError(t, err)
	require.Len(t, manifest.Dependencies, 1)
	assert.Equal(t, DependencyValue{FromRepo: true, Active: false}, manifest.Dependencies[0].Value)
}

func TestValidateContentName(t *testing.T) {
	assert.True(t, ValidateContentName("SharedUtils"))
	assert.True(t, ValidateContentName("_mod"))
	assert.True(t, ValidateContentName("mod_3"))
	assert.False(t, ValidateContentName(""))
	assert.False(t, ValidateContentName("3mod"))
	assert.False(t, ValidateContentName("my mod"))
	assert.False(t, ValidateContentName("mod-name"))
}
