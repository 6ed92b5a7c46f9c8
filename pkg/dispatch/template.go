package dispatch

// dispatcherTemplate renders the multicall entry point. Every name and symbol
// substituted here has passed registry.ValidateName, so no C escaping is needed.
const dispatcherTemplate = `/* Code generated by {{.App}}; DO NOT EDIT. */
#include <stdio.h>
#include <string.h>

#define APP "{{.App}}"
#define VER "{{.Version}}"

struct tool {
    const char *name;
    int (*fn)(int, char **);
    const char **desc;
    const char **help;
};
{{range .Table}}
int {{.Main}}(int, char **);
extern const char *{{.Desc}} __attribute__((weak));
extern const char *{{.Help}} __attribute__((weak));
{{- end}}

static const struct tool tools[] = {
{{- range .Table}}
    {"{{.Name}}", {{.Main}}, &{{.Desc}}, &{{.Help}}},
{{- end}}
    {NULL, NULL, NULL, NULL}
};

/* Weak symbols that were never defined resolve to a NULL address. */
static const char *meta(const char **ref) {
    if (ref == NULL || *ref == NULL || **ref == '\0')
        return NULL;
    return *ref;
}

static const char *base_name(const char *path) {
    const char *slash = strrchr(path, '/');
    return slash ? slash + 1 : path;
}

static int is_help_flag(const char *arg) {
    return !strcmp(arg, "-h") || !strcmp(arg, "--help");
}

static int is_version_flag(const char *arg) {
    return !strcmp(arg, "-V") || !strcmp(arg, "--version");
}

static const struct tool *find_tool(const char *name) {
    for (const struct tool *t = tools; t->name; t++)
        if (!strcmp(name, t->name))
            return t;
    return NULL;
}

static void list_commands(void) {
    printf("Available commands:\n");
    for (const struct tool *t = tools; t->name; t++) {
        const char *desc = meta(t->desc);
        if (desc)
            printf("  %-16s %s\n", t->name, desc);
        else
            printf("  %s\n", t->name);
    }
}

static void usage(void) {
    printf("%s v%s\n", APP, VER);
    printf("Usage: %s <command> [args]\n", APP);
    printf("   or: <command> [args]  (through an installed link)\n\n");
    list_commands();
    printf("\nOptions:\n");
    printf("  -h, --help     Show this help.\n");
    printf("  -V, --version  Show the version.\n");
    printf("\nRun '%s <command> --help' for help on a command.\n", APP);
}

static void print_tool_usage(const struct tool *t) {
    const char *desc = meta(t->desc);
    const char *help = meta(t->help);
    size_t len;

    if (desc)
        printf("%s - %s\n", t->name, desc);
    if (!help) {
        printf("Usage: %s [args]\n", t->name);
        return;
    }
    fputs(help, stdout);
    len = strlen(help);
    if (help[len - 1] != '\n')
        putchar('\n');
}

static int dispatch(const struct tool *t, int argc, char **argv) {
    if (argc > 1 && is_help_flag(argv[1])) {
        print_tool_usage(t);
        return 0;
    }
    return t->fn(argc, argv);
}

int main(int argc, char **argv) {
    const char *prog = (argc > 0 && argv[0]) ? base_name(argv[0]) : APP;
    const struct tool *t;

    if (!strcmp(prog, APP)) {
        if (argc < 2) {
            list_commands();
            return 0;
        }
        if (is_help_flag(argv[1])) {
            usage();
            return 0;
        }
        if (is_version_flag(argv[1])) {
            printf("%s v%s\n", APP, VER);
            return 0;
        }
        t = find_tool(argv[1]);
        if (!t) {
            fprintf(stderr, "%s: unknown command: %s\n", APP, argv[1]);
            return 1;
        }
        return dispatch(t, argc - 1, argv + 1);
    }

    t = find_tool(prog);
    if (!t) {
        fprintf(stderr, "%s: unknown command: %s\n", APP, prog);
        return 1;
    }
    return dispatch(t, argc, argv);
}
`
