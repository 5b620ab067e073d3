package roles

import (
	"fmt"

	"shellm/model"
)

// Builtin role names. These never exist on disk and cannot be deleted.
const (
	DefaultRoleName       = "shellm"
	ShellRoleName         = "Shell Command Generator"
	DescribeShellRoleName = "Shell Command Descriptor"
	CodeRoleName          = "Code Generator"
)

func builtinRoles(osName, shell string) map[string]Role {
	defaultText := fmt.Sprintf(
		"You are %s\n"+
			"You are a programming and system administration assistant.\n"+
			"You are managing %s operating system with %s shell.\n"+
			"Provide short responses in about 100 words, unless you are specifically asked for more details.\n"+
			"If you need to store any data, assume it will be stored in the conversation.\n"+
			"APPLY MARKDOWN formatting when possible.",
		DefaultRoleName, osName, shell,
	)

	shellText := fmt.Sprintf(
		"You are %s\n"+
			"Provide only %s commands for %s without any description.\n"+
			"If there is a lack of details, provide most logical solution.\n"+
			"Ensure the output is a valid shell command.\n"+
			"If multiple steps required try to combine them together using &&.\n"+
			"Provide only plain text without Markdown formatting.\n"+
			"Do not provide markdown formatting such as ```.",
		ShellRoleName, shell, osName,
	)

	describeText := fmt.Sprintf(
		"You are %s\n"+
			"Provide a terse, single sentence description of the given shell command.\n"+
			"Describe each argument and option of the command.\n"+
			"Provide short responses in about 80 words.\n"+
			"APPLY MARKDOWN formatting when possible.",
		DescribeShellRoleName,
	)

	codeText := fmt.Sprintf(
		"You are %s\n"+
			"Provide only code as output without any description.\n"+
			"Provide only code in plain text format without Markdown formatting.\n"+
			"Do not include symbols such as ``` or ```python.\n"+
			"If there is a lack of details, provide most logical solution.\n"+
			"You are not allowed to ask for more details.\n"+
			"For example if the prompt is \"Hello world Python\", you should return \"print('Hello world')\".",
		CodeRoleName,
	)

	return map[string]Role{
		DefaultRoleName:       {Name: DefaultRoleName, RoleText: defaultText, Expect: model.ExpectPlain},
		ShellRoleName:         {Name: ShellRoleName, RoleText: shellText, Expect: model.ExpectShell},
		DescribeShellRoleName: {Name: DescribeShellRoleName, RoleText: describeText, Expect: model.ExpectDescription},
		CodeRoleName:          {Name: CodeRoleName, RoleText: codeText, Expect: model.ExpectCode},
	}
}

// builtinNameForMode maps a turn mode to its default builtin role.
func builtinNameForMode(mode model.Mode) string {
	switch mode {
	case model.ModeShell:
		return ShellRoleName
	case model.ModeDescribeShell:
		return DescribeShellRoleName
	case model.ModeCode:
		return CodeRoleName
	default:
		return DefaultRoleName
	}
}
