package database

var schema = []string{
	`CREATE TABLE IF NOT EXISTS trx_runs (
		id CHAR(36) NOT NULL PRIMARY KEY,
		execution_id CHAR(36) NOT NULL,
		name VARCHAR(255) NOT NULL,
		run_user VARCHAR(255) NOT NULL,
		started_at DATETIME(3) NULL,
		finished_at DATETIME(3) NULL,
		total INT NOT NULL,
		executed INT NOT NULL,
		passed INT NOT NULL,
		failed INT NOT NULL,
		timed_out INT NOT NULL,
		not_executed INT NOT NULL,
		pending INT NOT NULL,
		excluded INT NOT NULL,
		report_path VARCHAR(1024) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS trx_results (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		run_id CHAR(36) NOT NULL,
		test_id CHAR(36) NOT NULL,
		test_name VARCHAR(1024) NOT NULL,
		code_base VARCHAR(1024) NOT NULL,
		outcome VARCHAR(32) NOT NULL,
		duration VARCHAR(32) NOT NULL,
		started_at VARCHAR(40) NOT NULL,
		ended_at VARCHAR(40) NOT NULL,
		error_message TEXT NULL,
		error_stack TEXT NULL,
		result_file VARCHAR(1024) NULL,
		INDEX idx_trx_results_run (run_id),
		CONSTRAINT fk_trx_results_run FOREIGN KEY (run_id) REFERENCES trx_runs (id) ON DELETE CASCADE
	)`,
}
