package compose

import (
	"os"

	"gopkg.in/yaml.v3"

	apperrors "github.com/team-mirai-volunteer/video-processor-sub003/internal/errors"
)

// SceneInput is one entry of a composition request: an origin asset shown
// for a fixed duration with an optional caption.
type SceneInput struct {
	AssetFileID     string  `yaml:"asset_file_id" json:"asset_file_id"`
	DurationSeconds float64 `yaml:"duration_seconds" json:"duration_seconds"`
	Caption         string  `yaml:"caption,omitempty" json:"caption,omitempty"`
}

type sceneFile struct {
	Scenes []SceneInput `yaml:"scenes"`
	BGM    *string      `yaml:"bgm,omitempty"`
}

// LoadSceneFile reads a YAML scene list of the form
//
//	scenes:
//	  - asset_file_id: origin-file-id
//	    duration_seconds: 4.5
//	    caption: 表示するテキスト
//	bgm: optional-origin-file-id
func LoadSceneFile(path string) ([]SceneInput, *string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.CodeValidation, "could not read scene file")
	}

	var f sceneFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.CodeParse, "malformed scene file")
	}
	if err := validateScenes(f.Scenes); err != nil {
		return nil, nil, err
	}
	return f.Scenes, f.BGM, nil
}
