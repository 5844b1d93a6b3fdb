// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
)

type Id int

const (
	ConfigLoadFailedId Id = iota + 1
	ConfigURIMissingId
	InvalidConfigURIId
	DescriptorNotFoundId
	AppNotFoundId
	FactoryNotFoundId
	SettingsModuleMissingId
	SettingsModuleNotFoundId
	BadDebugFlagId
	UnsupportedSettingId
	InvalidSettingValueId
	TestDatabaseFailedId
	TestRunFailedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // must never be empty, every issue type is documented
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue's Markdown followed by a "See also" list of its
// links.
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range slices.Concat(i.docLinks, i.extLinks) {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

const docsBase = "https://github.com/pastesettings/pastesettings/blob/main/docs/"

var (
	render = glamour.Render

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load the pastesettings configuration!

The configuration file could not be read or does not match the schema.

## Things you can try:
- Show where the configuration is looked up:
~~~
$ pastesettings config path
~~~

- Write a fresh default configuration:
~~~
$ pastesettings config init
~~~

- Check that ` + "`log_level`" + ` is one of debug, info, warn or error
- Check that ` + "`test_database.engine`" + ` is sqlite or postgres`,
		docLinks: []HttpLink{docsBase + "configuration.md"},
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	configURIMissingIssue = &Issue{
		id: ConfigURIMissingId,
		mdMsg: `
# No PasteDeploy config URI!

The test run needs a deployment descriptor to load the application from.

## Things you can try:
- Pass it as a flag:
~~~
$ pastesettings test --paste-config-uri config:development.ini ./...
~~~

- Or export it for ` + "`go test`" + ` directly:
~~~
$ export PASTESETTINGS_CONFIG_URI=config:development.ini
~~~`,
		docLinks: []HttpLink{docsBase + "testing.md"},
	}

	invalidConfigURIIssue = &Issue{
		id: InvalidConfigURIId,
		mdMsg: `
# Invalid config URI!

Config URIs look like ` + "`config:<path>[#<app>]`" + `. The ` + "`config:`" + ` scheme is optional,
and the application name defaults to ` + "`main`" + `.

## Examples:
~~~
config:development.ini
config:/srv/app/production.ini#admin
development.ini#main
~~~`,
		docLinks: []HttpLink{docsBase + "config-uri.md"},
	}

	descriptorNotFoundIssue = &Issue{
		id: DescriptorNotFoundId,
		mdMsg: `
# Deployment descriptor not found!

The ` + "`.ini`" + ` file named by the config URI does not exist or cannot be read.

## Things you can try:
- Relative paths are resolved against the current directory
- Check the file permissions
- Use an absolute path in the config URI`,
		docLinks: []HttpLink{docsBase + "config-uri.md"},
	}

	appNotFoundIssue = &Issue{
		id: AppNotFoundId,
		mdMsg: `
# Application section not found!

The descriptor has no ` + "`[app:<name>]`" + ` section for the requested application.

## Things you can try:
- Check the fragment of the config URI (` + "`#main`" + ` when omitted)
- Make sure the section declares a factory:
~~~ini
[app:main]
use = egg:pastesettings
SECRET_KEY = "change me"
~~~`,
		docLinks: []HttpLink{docsBase + "descriptors.md"},
		extLinks: []HttpLink{"https://docs.pylonsproject.org/projects/pastedeploy/en/latest/"},
	}

	factoryNotFoundIssue = &Issue{
		id: FactoryNotFoundId,
		mdMsg: `
# Application factory not found!

The ` + "`use`" + ` key of the application section names a factory that is not registered.

## Things you can try:
- Use the built-in factory:
~~~ini
use = egg:pastesettings
~~~

- Register custom factories before loading the application`,
		docLinks: []HttpLink{docsBase + "descriptors.md"},
	}

	settingsModuleMissingIssue = &Issue{
		id: SettingsModuleMissingId,
		mdMsg: `
# No settings module configured!

The ` + "`[DEFAULT]`" + ` section must name the settings module to configure.

## Example:
~~~ini
[DEFAULT]
debug = false
django_settings_module = myproject.settings
~~~`,
		docLinks: []HttpLink{docsBase + "descriptors.md"},
	}

	settingsModuleNotFoundIssue = &Issue{
		id: SettingsModuleNotFoundId,
		mdMsg: `
# Settings module not found!

The settings module named by ` + "`django_settings_module`" + ` could not be located.

## Search order:
1. Modules registered by the application
2. ` + "`<name>.cue`" + `, ` + "`<name>.json`" + ` and ` + "`<name>.jsonc`" + ` under each configured settings path

## Things you can try:
- Show the configured settings paths:
~~~
$ pastesettings config show
~~~

- Dotted names map to directories: ` + "`myproject.settings`" + ` is ` + "`myproject/settings.cue`",
		docLinks: []HttpLink{docsBase + "settings-modules.md"},
	}

	badDebugFlagIssue = &Issue{
		id: BadDebugFlagId,
		mdMsg: `
# Misplaced debug flag!

` + "`DEBUG`" + ` is controlled by the ` + "`debug`" + ` option of the ` + "`[DEFAULT]`" + ` section only.

## Things you can try:
- Remove ` + "`DEBUG`" + ` from the settings module
- Remove ` + "`debug`" + ` from the application section
- Add ` + "`debug = false`" + ` to ` + "`[DEFAULT]`" + ` if it is missing
- Set ` + "`debug`" + ` to ` + "`true`" + ` or ` + "`false`" + `, not a number or string`,
		docLinks: []HttpLink{docsBase + "settings.md"},
	}

	unsupportedSettingIssue = &Issue{
		id: UnsupportedSettingId,
		mdMsg: `
# Unsupported setting!

Some settings are derived by pastesettings itself and cannot be set in a descriptor.

## Things you can try:
- Remove the setting from the application section
- ` + "`DEBUG`" + ` comes from the ` + "`debug`" + ` global option
- ` + "`PASTE_CONFIGURATION_FILE`" + ` is set from the descriptor path`,
		docLinks: []HttpLink{docsBase + "settings.md"},
	}

	invalidSettingValueIssue = &Issue{
		id: InvalidSettingValueId,
		mdMsg: `
# Invalid setting value!

Setting values are JSON literals, after ` + "`${name}`" + ` references are substituted.

## Examples:
~~~ini
DEBUG_TOOLBAR = true
ALLOWED_HOSTS = ["${domain}", "localhost"]
SITE_NAME = "My site"
~~~

## Things you can try:
- Quote string values
- Escape a literal dollar sign as ` + "`$$`",
		docLinks: []HttpLink{docsBase + "settings.md"},
		extLinks: []HttpLink{"https://www.json.org/"},
	}

	testDatabaseFailedIssue = &Issue{
		id: TestDatabaseFailedId,
		mdMsg: `
# Failed to set up the test database!

## Things you can try:
- For PostgreSQL, make sure a Docker daemon is reachable:
~~~
$ docker info
~~~

- Switch to the SQLite engine in the configuration:
~~~cue
test_database: engine: "sqlite"
~~~

- Run without a database:
~~~
$ pastesettings test --no-db ./...
~~~`,
		docLinks: []HttpLink{docsBase + "testing.md"},
		extLinks: []HttpLink{"https://golang.testcontainers.org/"},
	}

	testRunFailedIssue = &Issue{
		id: TestRunFailedId,
		mdMsg: `
# Test run failed!

` + "`go test`" + ` exited with a non-zero status.

## Things you can try:
- Re-run with verbose output:
~~~
$ pastesettings test ./... -- -v
~~~

- Keep the test database for inspection:
~~~
$ pastesettings test --keep-db ./...
~~~`,
		docLinks: []HttpLink{docsBase + "testing.md"},
	}

	issues = map[Id]*Issue{
		configLoadFailedIssue.Id():       configLoadFailedIssue,
		configURIMissingIssue.Id():       configURIMissingIssue,
		invalidConfigURIIssue.Id():       invalidConfigURIIssue,
		descriptorNotFoundIssue.Id():     descriptorNotFoundIssue,
		appNotFoundIssue.Id():            appNotFoundIssue,
		factoryNotFoundIssue.Id():        factoryNotFoundIssue,
		settingsModuleMissingIssue.Id():  settingsModuleMissingIssue,
		settingsModuleNotFoundIssue.Id(): settingsModuleNotFoundIssue,
		badDebugFlagIssue.Id():           badDebugFlagIssue,
		unsupportedSettingIssue.Id():     unsupportedSettingIssue,
		invalidSettingValueIssue.Id():    invalidSettingValueIssue,
		testDatabaseFailedIssue.Id():     testDatabaseFailedIssue,
		testRunFailedIssue.Id():          testRunFailedIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, id := range slices.Sorted(maps.Keys(issues)) {
		out = append(out, issues[id])
	}
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
