package compiler

// DefaultProject is the compiler project file every invocation builds from.
const DefaultProject = "tsconfig.json"

// TargetArgs returns the arguments of a code-emitting build for one module format.
func TargetArgs(project, module, outDir string) []string {
	return []string{"--pretty", "-p", projectOrDefault(project), "--module", module, "--outDir", outDir}
}

// DeclarationArgs returns the arguments of a declaration-only build.
func DeclarationArgs(project, outDir string) []string {
	return []string{
		"--pretty", "-p", projectOrDefault(project),
		"--declaration", "true",
		"--declarationMap", "true",
		"--emitDeclarationOnly", "true",
		"--outDir", outDir,
	}
}

func projectOrDefault(project string) string {
	if project == "" {
		return DefaultProject
	}
	return project
}
