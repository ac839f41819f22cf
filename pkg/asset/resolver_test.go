package asset

import (
	"testing"
)

func TestImageNames(t *testing.T) {
	t.Run("下絵のファイル名がゼロ埋めで生成されること", func(t *testing.T) {
		got := SketchImageName(3)
		if got != "page_03_sketch.png" {
			t.Errorf("期待値 'page_03_sketch.png', 実際の値 '%s'", got)
		}
	})

	t.Run("本絵のファイル名がゼロ埋めで生成されること", func(t *testing.T) {
		got := FinalImageName(12)
		if got != "page_12.png" {
			t.Errorf("期待値 'page_12.png', 実際の値 '%s'", got)
		}
	})
}

func TestIsBundleImage(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"page_01.png", true},
		{"page_01_sketch.png", true},
		{"character_ref.png", true},
		{"page_1.png", false},
		{"photo.jpg", false},
		{"", false},
	}

	for _, c := range cases {
		if got := IsBundleImage(c.name); got != c.want {
			t.Errorf("IsBundleImage(%q) 期待値 %v, 実際の値 %v", c.name, c.want, got)
		}
	}
}
