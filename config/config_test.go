package config

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"

	"github.com/Moe-Sakura/anime-search-api/filesystem"
	"github.com/Moe-Sakura/anime-search-api/key"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without error", func() {
			err := Setup()
			So(err, ShouldBeNil)
		})

		Convey("Should have default values populated", func() {
			_ = Setup()
			for name := range Default {
				So(viper.Get(name), ShouldNotBeNil)
			}
			So(viper.GetInt(key.ServerPort), ShouldEqual, 3000)
			So(viper.GetString(key.RulesRepo), ShouldEqual, "Predidit/KazumiRules")
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			result := EnvKeyReplacer.Replace("rules.github_proxy")
			So(result, ShouldEqual, "rules_github_proxy")
		})

		Convey("Field Env() should carry the application prefix", func() {
			field := Default[key.HTTPTimeout]
			So(field.Env(), ShouldEqual, "ANIMESEARCH_HTTP_TIMEOUT")
		})
	})
}
