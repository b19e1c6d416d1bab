package database

import (
	"database/sql"
	"time"
)

func (db *PgMasterRepository) CreateAccount(params CreateAccountParams) (Account, error) {
	res := db.conn.QueryRow(
		"INSERT INTO accounts (tenant_id, display_name, email, phone, password_hash, role, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6, $7, $7) "+
			"RETURNING id, tenant_id, display_name, email, phone, role, is_verified, created_at, updated_at",
		params.TenantId,
		params.DisplayName,
		params.EmailAddress,
		params.PhoneNumber,
		params.PasswordHash,
		params.Role,
		time.Now().UTC(),
	)

	var a Account
	err := res.Scan(
		&a.Id,
		&a.TenantId,
		&a.DisplayName,
		&a.EmailAddress,
		&a.PhoneNumber,
		&a.Role,
		&a.IsVerified,
		&a.CreatedAt,
		&a.UpdatedAt,
	)

	return a, err
}

func (db *PgMasterRepository) UpdateAccount(params UpdateAccountParams) (Account, error) {
	res := db.conn.QueryRow(
		"UPDATE accounts SET display_name = $2, password_hash = $3, updated_at = $4 "+
			"WHERE id = $1 RETURNING id, tenant_id, display_name, email, phone, role, is_verified, created_at, updated_at",
		params.UserId,
		params.DisplayName,
		params.PasswordHash,
		time.Now().UTC(),
	)

	var a Account
	err := res.Scan(
		&a.Id,
		&a.TenantId,
		&a.DisplayName,
		&a.EmailAddress,
		&a.PhoneNumber,
		&a.Role,
		&a.IsVerified,
		&a.CreatedAt,
		&a.UpdatedAt,
	)

	return a, err
}

func (db *PgMasterRepository) GetAccountById(accountId int) (Account, error) {
	row := db.conn.QueryRow(
		"SELECT id, tenant_id, display_name, email, phone, password_hash, role, is_verified, created_at, updated_at "+
			"FROM accounts WHERE id = $1 LIMIT 1",
		accountId,
	)

	var a Account
	err := row.Scan(
		&a.Id,
		&a.TenantId,
		&a.DisplayName,
		&a.EmailAddress,
		&a.PhoneNumber,
		&a.PasswordHash,
		&a.Role,
		&a.IsVerified,
		&a.CreatedAt,
		&a.UpdatedAt,
	)

	return a, err
}

func (db *PgMasterRepository) GetAccountByEmail(tenantId, email string) (Account, error) {
	row := db.conn.QueryRow(
		"SELECT id, tenant_id, display_name, email, phone, password_hash, role, is_verified, created_at, updated_at "+
			"FROM accounts WHERE tenant_id = $1 AND email = $2 LIMIT 1",
		tenantId,
		email,
	)

	var a Account
	err := row.Scan(
		&a.Id,
		&a.TenantId,
		&a.DisplayName,
		&a.EmailAddress,
		&a.PhoneNumber,
		&a.PasswordHash,
		&a.Role,
		&a.IsVerified,
		&a.CreatedAt,
		&a.UpdatedAt,
	)

	return a, err
}

func (db *PgMasterRepository) MarkAccountVerified(accountId int) error {
	_, err := db.conn.Exec(
		"UPDATE accounts SET is_verified = TRUE, updated_at = $2 WHERE id = $1",
		accountId,
		time.Now().UTC(),
	)
	return err
}

func (db *PgMasterRepository) ListTenants() ([]Tenant, error) {
	rows, err := db.conn.Query(
		"SELECT id, name, description, tenant_type, max_users, ai_enabled, created_at FROM tenants ORDER BY name",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []Tenant
	for rows.Next() {
		var t Tenant
		if err := rows.Scan(&t.Id, &t.Name, &t.Description, &t.TenantType, &t.MaxUsers, &t.AIEnabled, &t.CreatedAt); err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}

	return tenants, rows.Err()
}

func (db *PgMasterRepository) GetTenantById(tenantId string) (Tenant, error) {
	row := db.conn.QueryRow(
		"SELECT id, name, description, tenant_type, max_users, ai_enabled, created_at FROM tenants "+
			"WHERE id = $1 LIMIT 1",
		tenantId,
	)

	var t Tenant
	err := row.Scan(&t.Id, &t.Name, &t.Description, &t.TenantType, &t.MaxUsers, &t.AIEnabled, &t.CreatedAt)

	return t, err
}

func (db *PgMasterRepository) CreateChannel(params CreateChannelParams) (Channel, error) {
	res := db.conn.QueryRow(
		"INSERT INTO channels (tenant_id, name, description, is_private, max_members, created_by, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6, $7, $7) "+
			"RETURNING id, tenant_id, name, description, is_private, is_active, max_members, created_by, created_at, updated_at",
		params.TenantId,
		params.Name,
		params.Description,
		params.IsPrivate,
		params.MaxMembers,
		params.CreatedBy,
		time.Now().UTC(),
	)

	var c Channel
	err := res.Scan(
		&c.Id,
		&c.TenantId,
		&c.Name,
		&c.Description,
		&c.IsPrivate,
		&c.IsActive,
		&c.MaxMembers,
		&c.CreatedBy,
		&c.CreatedAt,
		&c.UpdatedAt,
	)

	return c, err
}

func (db *PgMasterRepository) GetChannel(channelId int) (Channel, error) {
	row := db.conn.QueryRow(
		"SELECT c.id, c.tenant_id, c.name, c.description, c.is_private, c.is_active, c.max_members, c.created_by, "+
			"c.created_at, c.updated_at, "+
			"(SELECT COUNT(*) FROM channel_members m WHERE m.channel_id = c.id) AS member_count "+
			"FROM channels c WHERE c.id = $1 LIMIT 1",
		channelId,
	)

	var c Channel
	err := row.Scan(
		&c.Id,
		&c.TenantId,
		&c.Name,
		&c.Description,
		&c.IsPrivate,
		&c.IsActive,
		&c.MaxMembers,
		&c.CreatedBy,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.MemberCount,
	)

	return c, err
}

// ListChannels returns a tenant's active channels. Private channels
// are included only for their members unless includePrivate is set
// (admin callers).
func (db *PgMasterRepository) ListChannels(tenantId string, userId int, includePrivate bool) ([]Channel, error) {
	query := "SELECT c.id, c.tenant_id, c.name, c.description, c.is_private, c.is_active, c.max_members, c.created_by, " +
		"c.created_at, c.updated_at, " +
		"(SELECT COUNT(*) FROM channel_members m WHERE m.channel_id = c.id) AS member_count " +
		"FROM channels c WHERE c.tenant_id = $1 AND c.is_active = TRUE"
	args := []any{tenantId}

	if !includePrivate {
		query += " AND (c.is_private = FALSE OR EXISTS " +
			"(SELECT 1 FROM channel_members m WHERE m.channel_id = c.id AND m.user_id = $2))"
		args = append(args, userId)
	}
	query += " ORDER BY c.name"

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []Channel
	for rows.Next() {
		var c Channel
		if err := rows.Scan(
			&c.Id,
			&c.TenantId,
			&c.Name,
			&c.Description,
			&c.IsPrivate,
			&c.IsActive,
			&c.MaxMembers,
			&c.CreatedBy,
			&c.CreatedAt,
			&c.UpdatedAt,
			&c.MemberCount,
		); err != nil {
			return nil, err
		}
		channels = append(channels, c)
	}

	return channels, rows.Err()
}

func (db *PgMasterRepository) UpdateChannel(params UpdateChannelParams) (Channel, error) {
	res := db.conn.QueryRow(
		"UPDATE channels SET name = $2, description = $3, is_private = $4, updated_at = $5 "+
			"WHERE id = $1 "+
			"RETURNING id, tenant_id, name, description, is_private, is_active, max_members, created_by, created_at, updated_at",
		params.ChannelId,
		params.Name,
		params.Description,
		params.IsPrivate,
		time.Now().UTC(),
	)

	var c Channel
	err := res.Scan(
		&c.Id,
		&c.TenantId,
		&c.Name,
		&c.Description,
		&c.IsPrivate,
		&c.IsActive,
		&c.MaxMembers,
		&c.CreatedBy,
		&c.CreatedAt,
		&c.UpdatedAt,
	)

	return c, err
}

// DeleteChannel is a soft delete; message history stays in the tenant store.
func (db *PgMasterRepository) DeleteChannel(channelId int) error {
	res, err := db.conn.Exec(
		"UPDATE channels SET is_active = FALSE, updated_at = $2 WHERE id = $1",
		channelId,
		time.Now().UTC(),
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (db *PgMasterRepository) AddChannelMember(channelId, userId int, role string) error {
	_, err := db.conn.Exec(
		"INSERT INTO channel_members (channel_id, user_id, role, joined_at) VALUES ($1, $2, $3, $4)",
		channelId,
		userId,
		role,
		time.Now().UTC(),
	)
	return err
}

func (db *PgMasterRepository) RemoveChannelMember(channelId, userId int) error {
	res, err := db.conn.Exec(
		"DELETE FROM channel_members WHERE channel_id = $1 AND user_id = $2",
		channelId,
		userId,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (db *PgMasterRepository) UpdateMemberRole(channelId, userId int, role string) error {
	res, err := db.conn.Exec(
		"UPDATE channel_members SET role = $3 WHERE channel_id = $1 AND user_id = $2",
		channelId,
		userId,
		role,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (db *PgMasterRepository) ListChannelMembers(channelId int) ([]ChannelMember, error) {
	rows, err := db.conn.Query(
		"SELECT channel_id, user_id, role, joined_at FROM channel_members WHERE channel_id = $1 ORDER BY joined_at",
		channelId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []ChannelMember
	for rows.Next() {
		var m ChannelMember
		if err := rows.Scan(&m.ChannelId, &m.UserId, &m.Role, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}

	return members, rows.Err()
}

func (db *PgMasterRepository) IsChannelMember(channelId, userId int) bool {
	row := db.conn.QueryRow(
		"SELECT 1 FROM channel_members WHERE channel_id = $1 AND user_id = $2 LIMIT 1",
		channelId,
		userId,
	)

	var one int
	return row.Scan(&one) == nil
}

func (db *PgMasterRepository) CreateOTP(params CreateOTPParams) (OTPCode, error) {
	res := db.conn.QueryRow(
		"INSERT INTO otp_codes (account_id, code_hash, transport, expires_at, created_at) "+
			"VALUES ($1, $2, $3, $4, $5) RETURNING id, account_id, code_hash, transport, expires_at, consumed, created_at",
		params.AccountId,
		params.CodeHash,
		params.Transport,
		params.ExpiresAt,
		time.Now().UTC(),
	)

	var otp OTPCode
	err := res.Scan(&otp.Id, &otp.AccountId, &otp.CodeHash, &otp.Transport, &otp.ExpiresAt, &otp.Consumed, &otp.CreatedAt)

	return otp, err
}

func (db *PgMasterRepository) GetActiveOTP(accountId int) (OTPCode, error) {
	row := db.conn.QueryRow(
		"SELECT id, account_id, code_hash, transport, expires_at, consumed, created_at FROM otp_codes "+
			"WHERE account_id = $1 AND consumed = FALSE AND expires_at > $2 "+
			"ORDER BY created_at DESC LIMIT 1",
		accountId,
		time.Now().UTC(),
	)

	var otp OTPCode
	err := row.Scan(&otp.Id, &otp.AccountId, &otp.CodeHash, &otp.Transport, &otp.ExpiresAt, &otp.Consumed, &otp.CreatedAt)

	return otp, err
}

func (db *PgMasterRepository) ConsumeOTP(otpId int) error {
	_, err := db.conn.Exec("UPDATE otp_codes SET consumed = TRUE WHERE id = $1", otpId)
	return err
}
