package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	"tareas/internal/client"
	"tareas/internal/domain/models"
)

const usage = `uso: client [-api URL] [-session FILE] <comando> [opciones]

comandos:
  register -nombre N -email E -password P
  login    -email E -password P
  logout
  list     [-prioridad baja|media|alta] [-estado pendiente|en_progreso|completada]
  html     [-prioridad ...] [-estado ...] [-o FILE]
  add      -titulo T [-desc D] [-vence AAAA-MM-DD] [-prioridad P] [-estado E]
  edit     ID [-titulo T] [-desc D] [-vence AAAA-MM-DD] [-prioridad P] [-estado E]
  rm       ID
`

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	global := flag.NewFlagSet("client", flag.ContinueOnError)
	apiURL := global.String("api", envOr("TAREAS_API", "http://localhost:3000/api"), "base URL of the API")
	sessionPath := global.String("session", defaultSessionPath(), "session file")
	global.Usage = func() { fmt.Fprint(global.Output(), usage) }
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		global.Usage()
		return errors.New("falta el comando")
	}

	if err := os.MkdirAll(filepath.Dir(*sessionPath), 0o700); err != nil {
		return err
	}
	store, err := client.OpenBoltStore(*sessionPath)
	if err != nil {
		return err
	}
	defer store.Close()

	shell := client.NewShell(client.NewAPIClient(*apiURL, nil), client.NewSession(store))
	cmd, rest := global.Arg(0), global.Args()[1:]

	// Auth commands start from scratch; everything else needs the saved session.
	switch cmd {
	case "register", "login", "logout":
	default:
		if err := shell.Init(ctx); err != nil {
			return err
		}
		if !shell.Session().Authenticated() {
			return client.ErrNotSignedIn
		}
	}

	switch cmd {
	case "register":
		return register(ctx, shell, rest, out)
	case "login":
		return login(ctx, shell, rest, out)
	case "logout":
		if err := shell.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(out, "Sesión cerrada")
		return nil
	case "list":
		return list(shell, rest, out)
	case "html":
		return renderHTML(shell, rest, out)
	case "add":
		return add(ctx, shell, rest, out)
	case "edit":
		return edit(ctx, shell, rest, out)
	case "rm":
		return remove(ctx, shell, rest, out)
	default:
		global.Usage()
		return fmt.Errorf("comando desconocido: %s", cmd)
	}
}

func register(ctx context.Context, shell *client.Shell, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	var req models.RegisterRequest
	fs.StringVar(&req.Name, "nombre", "", "nombre")
	fs.StringVar(&req.Email, "email", "", "email")
	fs.StringVar(&req.Password, "password", "", "contraseña")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := shell.Register(ctx, req); err != nil {
		return err
	}
	return greet(shell, out)
}

func login(ctx context.Context, shell *client.Shell, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	var req models.LoginRequest
	fs.StringVar(&req.Email, "email", "", "email")
	fs.StringVar(&req.Password, "password", "", "contraseña")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := shell.Login(ctx, req); err != nil {
		return err
	}
	return greet(shell, out)
}

func greet(shell *client.Shell, out io.Writer) error {
	user, _ := shell.Session().User()
	_, err := fmt.Fprintf(out, "Hola, %s. Tienes %d tareas.\n", user.Name, len(shell.Tasks()))
	return err
}

func filterFlags(fs *flag.FlagSet) func() client.Filter {
	priority := fs.String("prioridad", "", "filtrar por prioridad")
	status := fs.String("estado", "", "filtrar por estado")
	return func() client.Filter {
		return client.Filter{Priority: models.Priority(*priority), Status: models.Status(*status)}
	}
}

func list(shell *client.Shell, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	filter := filterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	shell.SetFilter(filter())

	tasks := shell.Visible()
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(out, "No hay tareas para mostrar")
		return err
	}

	now := time.Now()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTÍTULO\tPRIORIDAD\tESTADO\tVENCE\t")
	for _, t := range tasks {
		due := client.FormatDue(t)
		if client.Overdue(t, now) {
			due += " (Vencida)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t\n", t.ID, t.Title, t.Priority, client.StatusLabel(t.Status), due)
	}
	return tw.Flush()
}

func renderHTML(shell *client.Shell, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("html", flag.ContinueOnError)
	filter := filterFlags(fs)
	outPath := fs.String("o", "", "archivo de salida (por defecto stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	shell.SetFilter(filter())

	if *outPath == "" {
		return client.RenderTasks(out, shell.Visible(), time.Now())
	}
	f, err := os.Create(*outPath)
	if err != nil {
		return err
	}
	if err := client.RenderTasks(f, shell.Visible(), time.Now()); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func add(ctx context.Context, shell *client.Shell, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	title := fs.String("titulo", "", "título")
	desc := fs.String("desc", "", "descripción")
	due := fs.String("vence", "", "fecha de vencimiento AAAA-MM-DD")
	priority := fs.String("prioridad", "", "baja, media o alta")
	status := fs.String("estado", "", "pendiente, en_progreso o completada")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := models.CreateTaskRequest{
		Title:    *title,
		Priority: models.Priority(*priority),
		Status:   models.Status(*status),
	}
	if *desc != "" {
		req.Description = desc
	}
	if *due != "" {
		req.DueDate = due
	}

	task, err := shell.CreateTask(ctx, req)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "Tarea %d creada\n", task.ID)
	return err
}

// edit sends only the flags given on the command line. An explicitly empty
// -desc or -vence clears that field.
func edit(ctx context.Context, shell *client.Shell, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("uso: edit ID [opciones]")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("ID inválido: %s", args[0])
	}

	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	title := fs.String("titulo", "", "título")
	desc := fs.String("desc", "", "descripción")
	due := fs.String("vence", "", "fecha de vencimiento AAAA-MM-DD")
	priority := fs.String("prioridad", "", "baja, media o alta")
	status := fs.String("estado", "", "pendiente, en_progreso o completada")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	var patch models.TaskPatch
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "titulo":
			patch.Title = models.Some(*title)
		case "desc":
			patch.Description = clearable(*desc)
		case "vence":
			patch.DueDate = clearable(*due)
		case "prioridad":
			patch.Priority = models.Some(models.Priority(*priority))
		case "estado":
			patch.Status = models.Some(models.Status(*status))
		}
	})

	task, err := shell.UpdateTask(ctx, id, patch)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "Tarea %d actualizada\n", task.ID)
	return err
}

func clearable(v string) models.Optional[string] {
	if v == "" {
		return models.Null[string]()
	}
	return models.Some(v)
}

func remove(ctx context.Context, shell *client.Shell, args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("uso: rm ID")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("ID inválido: %s", args[0])
	}
	if err := shell.DeleteTask(ctx, id); err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, "Tarea eliminada exitosamente")
	return err
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "tareas", "session.db")
}
