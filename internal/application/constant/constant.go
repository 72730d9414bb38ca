package constant

// Error is the slog attribute key used for error values across the app.
const Error = "error"
